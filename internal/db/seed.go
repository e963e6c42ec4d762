package db

import (
	"errors"
	"fmt"

	"myblog/internal/models"
	"myblog/internal/utils"

	"gorm.io/gorm"
)

// SeedAdmin creates a staff account when none exists yet, so the keyword
// admin endpoints are reachable on a fresh install.
func SeedAdmin(username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	var existing models.User
	err := DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsStaff:  true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return true, nil
}
