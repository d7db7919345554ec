package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// FirestoreStore writes history documents into the math_problems collection.
type FirestoreStore struct {
	client *firestore.Client
	col    string
}

type firestoreDoc struct {
	UserID             string    `firestore:"user_id"`
	Timestamp          time.Time `firestore:"timestamp,serverTimestamp"`
	ProblemDescription *string   `firestore:"problem_description"`
	Solution           string    `firestore:"solution"`
	Steps              []string  `firestore:"steps"`
	Answer             string    `firestore:"answer"`
	ProcessingTime     float64   `firestore:"processing_time"`
	Engine             string    `firestore:"engine,omitempty"`
	Model              string    `firestore:"model,omitempty"`
}

func OpenFirestore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, errors.New("firestore: project id is empty")
	}
	cl, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: cl, col: Collection}, nil
}

func (s *FirestoreStore) Save(ctx context.Context, rec Record) (string, error) {
	ref, _, err := s.client.Collection(s.col).Add(ctx, toDoc(rec))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	it := s.client.Collection(s.col).
		Where("user_id", "==", userID).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer it.Stop()

	out := make([]Record, 0, limit)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var d firestoreDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("document %s: %w", snap.Ref.ID, err)
		}
		out = append(out, fromDoc(snap.Ref.ID, d))
	}
	return out, nil
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

// toDoc leaves Timestamp zero so Firestore fills in the server time.
func toDoc(rec Record) firestoreDoc {
	return firestoreDoc{
		UserID:             rec.UserID,
		ProblemDescription: rec.ProblemDescription,
		Solution:           rec.Solution,
		Steps:              rec.Steps,
		Answer:             rec.Answer,
		ProcessingTime:     rec.ProcessingTime,
		Engine:             rec.Engine,
		Model:              rec.Model,
	}
}

func fromDoc(id string, d firestoreDoc) Record {
	return Record{
		ID:                 id,
		UserID:             d.UserID,
		Timestamp:          d.Timestamp,
		ProblemDescription: d.ProblemDescription,
		Solution:           d.Solution,
		Steps:              d.Steps,
		Answer:             d.Answer,
		ProcessingTime:     d.ProcessingTime,
		Engine:             d.Engine,
		Model:              d.Model,
	}
}
