package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bkorir-git/Student-finance-management-system/app/config"
	"github.com/bkorir-git/Student-finance-management-system/app/database"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
)

func main() {
	username := flag.String("username", "admin", "Username for the new user")
	password := flag.String("password", "", "Password for the new user (required)")
	fullName := flag.String("name", "", "Full name")
	email := flag.String("email", "", "Email address")
	role := flag.String("role", string(models.RoleAdmin), "Role: admin, accountant or viewer")
	flag.Parse()

	if *password == "" {
		fmt.Println("Usage: add_user -username <name> -password <password> [-role admin|accountant|viewer]")
		os.Exit(1)
	}

	userRole := models.Role(*role)
	if !userRole.IsValid() {
		fmt.Printf("Invalid role: %s\n", *role)
		os.Exit(1)
	}

	// Initialize database connection
	config.InitDB()
	db := config.GetDB()
	if db == nil {
		fmt.Println("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		os.Exit(1)
	}

	user := &models.User{
		Username: *username,
		Email:    *email,
		Password: hashed,
		FullName: *fullName,
		Role:     userRole,
	}

	if err := database.CreateUser(db, user); err != nil {
		fmt.Printf("Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully: %s (%s)\n", user.Username, user.Role)
}
