package main

import (
	"time"

	"flowbuilder/pkg/auth"
)

// newTokenGenerator builds a mint function for development tokens
func newTokenGenerator(secret, issuer string, expiry time.Duration) (func(userID, email string) (string, error), error) {
	generator, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{
		SecretKey:  secret,
		Issuer:     issuer,
		ExpiryTime: expiry,
	})
	if err != nil {
		return nil, err
	}
	return func(userID, email string) (string, error) {
		return generator.GenerateToken(userID, email, []string{"authenticated"})
	}, nil
}
