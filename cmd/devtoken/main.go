// Command devtoken mints an access token signed with the configured JWT secret.
// It is meant for local testing of the allocation routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	"github.com/noah-isme/hostel-allocation-api/internal/service"
	"github.com/noah-isme/hostel-allocation-api/pkg/config"
)

func main() {
	var (
		userID   string
		role     string
		email    string
		fullName string
		ttl      time.Duration
	)

	flag.StringVar(&userID, "user", "", "User id; the student id for STUDENT tokens")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "Role: STUDENT, ADMIN or SUPERADMIN")
	flag.StringVar(&email, "email", "", "Email claim")
	flag.StringVar(&fullName, "name", "", "Full name claim")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	flag.Parse()

	if strings.TrimSpace(userID) == "" {
		log.Fatal("-user is required")
	}
	parsedRole, err := parseRole(role)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	auth := service.NewAuthService(nil, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: ttl,
		Issuer:            cfg.JWT.Issuer,
	})
	token, err := auth.IssueToken(userID, parsedRole, email, fullName)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}

func parseRole(raw string) (models.UserRole, error) {
	switch r := models.UserRole(strings.ToUpper(strings.TrimSpace(raw))); r {
	case models.RoleStudent, models.RoleAdmin, models.RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}
