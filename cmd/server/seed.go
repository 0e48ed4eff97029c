package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// parseSeedClient splits an "id:secret" pair. The secret may itself contain
// colons.
func parseSeedClient(value string) (clientID, secret string, err error) {
	clientID, secret, ok := strings.Cut(value, ":")
	if !ok || clientID == "" || secret == "" {
		return "", "", errors.New("seed client must have the form id:secret")
	}
	return clientID, secret, nil
}

// seed creates a user holding the given client credential. An existing
// client id is left untouched.
func (app *application) seed(ctx context.Context, value string) error {
	clientID, secret, err := parseSeedClient(value)
	if err != nil {
		return err
	}

	userID, created, err := app.userService.EnsureCredential(ctx, clientID, secret)
	if err != nil {
		return fmt.Errorf("failed to seed client %q: %w", clientID, err)
	}

	if created {
		app.logger.Info("seeded client credential", "client_id", clientID, "user_id", userID)
	} else {
		app.logger.Info("seed client already exists", "client_id", clientID, "user_id", userID)
	}
	return nil
}
