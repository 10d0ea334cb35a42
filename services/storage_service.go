package services

import (
	"context"
	"fmt"
	"os"
	"path"

	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/notification"
	"tutorLinkAPI/internal/purchase"
)

// ProofStorage stores a payment proof remotely and returns its public URL.
type ProofStorage interface {
	UploadPaymentProof(ctx context.Context, clerkID string, proof *purchase.ProofFile) (string, error)
}

// FirebaseStorageService uploads payment proofs to a Cloud Storage bucket.
type FirebaseStorageService struct {
	app    *firebase.App
	bucket string
}

func NewFirebaseStorageService(localCredsPath string) (*FirebaseStorageService, error) {
	bucket := os.Getenv("PROOF_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("PROOF_BUCKET environment variable is not set")
	}

	opt, err := notification.Credentials(localCredsPath)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(context.Background(), &firebase.Config{StorageBucket: bucket}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	return &FirebaseStorageService{app: app, bucket: bucket}, nil
}

func (s *FirebaseStorageService) UploadPaymentProof(ctx context.Context, clerkID string, proof *purchase.ProofFile) (string, error) {
	client, err := s.app.Storage(ctx)
	if err != nil {
		return "", apperr.Storage("No se pudo conectar con el almacenamiento.", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return "", apperr.Storage("No se pudo conectar con el almacenamiento.", err)
	}

	objectName := fmt.Sprintf("payment-proofs/%s/%s%s", clerkID, uuid.New().String(), path.Ext(proof.Filename))

	w := bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = proof.ContentType
	if _, err := w.Write(proof.Data); err != nil {
		w.Close()
		return "", apperr.Storage("Error al subir el comprobante.", err)
	}
	if err := w.Close(); err != nil {
		return "", apperr.Storage("Error al subir el comprobante.", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}
