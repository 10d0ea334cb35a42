package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FCMService struct {
	client *messaging.Client
}

// NewFCMService initializes the push client. Credentials come from the
// FIREBASE_SERVICE_ACCOUNT_JSON environment variable (Base64 encoded) with a
// fallback to a local service account key file.
func NewFCMService(localFilePath string) (*FCMService, error) {
	opt, err := firebaseCredentials(localFilePath)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}

	return &FCMService{client: client}, nil
}

// firebaseCredentials resolves the shared Firebase credential option used by
// both the push client and the proof storage bucket.
func firebaseCredentials(localFilePath string) (option.ClientOption, error) {
	encodedCreds := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %v", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	}

	if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON is not set", localFilePath)
	}
	return option.WithCredentialsFile(localFilePath), nil
}

// Credentials exposes the resolved credential option for other Firebase clients.
func Credentials(localFilePath string) (option.ClientOption, error) {
	return firebaseCredentials(localFilePath)
}

func (s *FCMService) SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]any) error {
	if len(tokens) == 0 {
		return nil
	}

	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	var lastErr error
	for _, t := range tokens {
		msg := &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: stringData,
		}

		if _, err := s.client.Send(ctx, msg); err != nil {
			log.Printf("FCM send failed for token %s...: %v", truncateToken(t.Token), err)
			lastErr = err
		}
	}

	return lastErr
}

func truncateToken(token string) string {
	if len(token) > 12 {
		return token[:12]
	}
	return token
}
