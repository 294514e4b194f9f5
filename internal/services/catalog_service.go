package services

import (
	"shopreel/internal/domain"
	"shopreel/internal/repos"
)

// CatalogService is the read-only product lookup used by checkout.
type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}
