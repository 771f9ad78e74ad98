package config

import (
	"log"

	"outsized-identity/internal/adapters/persistence/models"
	"outsized-identity/internal/core/domain"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedRoles(); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedRoles seeds the fixed role catalog. IDs are stable and must match
// the resolver in internal/core/domain/roles.go.
func (s *Seeder) seedRoles() error {
	roles := []models.Role{
		{ID: domain.RoleIDAdmin, Name: domain.RoleAdmin, Description: "Full access, can manage users", Active: true},
		{ID: domain.RoleIDCustomer, Name: domain.RoleCustomer, Description: "Default role for self-serve sign-ups", Active: true},
	}

	for _, role := range roles {
		if err := s.db.Where("id = ?", role.ID).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}

	return nil
}
