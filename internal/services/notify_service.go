package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	applog "shopreel/internal/log"
	"shopreel/internal/repos"
)

// Pusher forwards a notification to an external delivery provider. Delivery
// failure must never fail the caller.
type Pusher interface {
	Push(userID, title, body string) error
}

// Notifier creates notification rows and pushes best-effort. Every failure
// is logged and swallowed: side communications never jeopardize a
// transaction that already succeeded.
type Notifier struct {
	Repo *repos.NotificationRepo
	Push Pusher // nil disables push delivery
}

func NewNotifier(repo *repos.NotificationRepo, push Pusher) *Notifier {
	return &Notifier{Repo: repo, Push: push}
}

func (n *Notifier) Notify(userID, title, body string) {
	if _, err := n.Repo.Create(userID, title, body); err != nil {
		applog.Error(nil, "notify.create.fail", err, map[string]any{"user_id": userID, "title": title})
		return
	}
	if n.Push == nil {
		return
	}
	if err := n.Push.Push(userID, title, body); err != nil {
		applog.Error(nil, "notify.push.fail", err, map[string]any{"user_id": userID, "title": title})
	}
}

// HTTPPusher posts notifications to an external push provider endpoint.
type HTTPPusher struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPPusher(endpoint string) *HTTPPusher {
	return &HTTPPusher{Endpoint: endpoint, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (p *HTTPPusher) Push(userID, title, body string) error {
	payload, _ := json.Marshal(map[string]string{"userId": userID, "title": title, "body": body})
	resp, err := p.Client.Post(p.Endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}
	return nil
}
