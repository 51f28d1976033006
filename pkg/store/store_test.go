package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/persim"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

func testRecord(t *testing.T, name string, created time.Time) *Record {
	t.Helper()
	img, err := persim.ImageFromRows([][]float64{{0, 1}, {2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	res := &pipeline.Result{
		Arrays: diagram.Arrays{"dim1": {{Birth: 1, Death: 2}}},
		Dims:   []int{1},
		Images: []persim.Image{img},
		Specs:  []persim.Specs{{MaxB: 1, MaxP: 1}},
	}
	rec := NewRecord(name, pipeline.Options{Weighting: "linear"}, res)
	rec.CreatedAt = created
	return rec
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	older := testRecord(t, "older", now.Add(-time.Hour))
	newer := testRecord(t, "newer", now)

	for _, rec := range []*Record{older, newer} {
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put(%s) error = %v", rec.Name, err)
		}
	}

	got, err := s.Get(ctx, newer.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "newer" || got.Options.Weighting != "linear" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Result.Images) != 1 || !got.Result.Images[0].Equal(newer.Result.Images[0]) {
		t.Error("stored image does not round-trip")
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Errorf("List() = %+v, want newest first", list)
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) returned %d records, want 1", len(list))
	}

	if err := s.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() after delete error = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second Delete() error = %v, want NOT_FOUND", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MOLTDA_MONGO_URI")
	if uri == "" {
		t.Skip("MOLTDA_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Collection: "test_" + uuid.NewString()})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		s.coll.Drop(ctx)
		s.Close()
	}()
	exerciseStore(t, s)
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{uuid.NewString(), false},
		{"", true},
		{"../etc/passwd", true},
		{"not-a-uuid", true},
	}
	for _, tt := range tests {
		if err := ValidateID(tt.id); (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
}
