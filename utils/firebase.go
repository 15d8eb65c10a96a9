// utils/firebase.go
package utils

import (
	"context"
	"fmt"

	"randevu/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// NewFirebaseAuthClient initializes the Firebase app and returns its Auth
// client, used to verify the ID tokens the booking endpoints require.
func NewFirebaseAuthClient(ctx context.Context) (*auth.Client, error) {
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Auth client: %w", err)
	}
	return client, nil
}
