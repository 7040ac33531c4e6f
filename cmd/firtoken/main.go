// Command firtoken mints access tokens for local development against fir-api.
//
//	JWT_SECRET=dev firtoken -sub 64f0c2... -role police -station S1
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/linesmerrill/fir-api/api"
	"github.com/linesmerrill/fir-api/models"
)

func main() {
	sub := flag.String("sub", "", "user id placed in the sub claim")
	role := flag.String("role", models.RoleCitizen, "citizen or police")
	station := flag.String("station", "", "station id for police tokens")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 secret, defaults to $JWT_SECRET")
	flag.Parse()

	if err := run(*secret, models.Identity{UserID: *sub, Role: *role, StationID: *station}, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "firtoken:", err)
		os.Exit(1)
	}
}

func run(secret string, id models.Identity, ttl time.Duration) error {
	if id.UserID == "" {
		return fmt.Errorf("-sub is required")
	}
	if id.Role != models.RoleCitizen && id.Role != models.RolePolice {
		return fmt.Errorf("unknown role %q", id.Role)
	}
	token, err := api.IssueToken([]byte(secret), id, ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
