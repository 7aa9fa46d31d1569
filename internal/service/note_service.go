package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/pkg/apperror"
)

type CreateNoteInput struct {
	Title    string   `json:"title" binding:"required,max=255"`
	Content  string   `json:"content" binding:"required"`
	Subject  string   `json:"subject" binding:"omitempty,max=100"`
	Tags     []string `json:"tags"`
	IsPublic *bool    `json:"is_public"`
}

type NoteService interface {
	CreateNote(ctx context.Context, ownerID string, input CreateNoteInput) (*model.Note, error)
	GetNote(ctx context.Context, accountID, noteID string) (*model.Note, error)
	ListNotes(ctx context.Context, accountID string, limit, offset int) ([]model.Note, error)
	ListMine(ctx context.Context, accountID string) ([]model.Note, error)
	Download(ctx context.Context, accountID, noteID string) (*model.Note, error)
}

type noteService struct {
	notes     repository.NoteRepository
	sanitizer *bluemonday.Policy
}

func NewNoteService(notes repository.NoteRepository) NoteService {
	return &noteService{
		notes:     notes,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *noteService) CreateNote(ctx context.Context, ownerID string, input CreateNoteInput) (*model.Note, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", apperror.ErrBadRequest)
	}

	note := &model.Note{
		OwnerID:  owner,
		Title:    strings.TrimSpace(input.Title),
		Content:  s.sanitizer.Sanitize(input.Content),
		Tags:     pq.StringArray{},
		IsPublic: true,
	}
	if input.Subject != "" {
		subject := strings.TrimSpace(input.Subject)
		note.Subject = &subject
	}
	if len(input.Tags) > 0 {
		note.Tags = pq.StringArray(input.Tags)
	}
	if input.IsPublic != nil {
		note.IsPublic = *input.IsPublic
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

func (s *noteService) GetNote(ctx context.Context, accountID, noteID string) (*model.Note, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("note not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if !note.IsPublic && note.OwnerID.String() != accountID {
		return nil, fmt.Errorf("note is private: %w", apperror.ErrForbidden)
	}

	return note, nil
}

func (s *noteService) ListNotes(ctx context.Context, accountID string, limit, offset int) ([]model.Note, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notes.ListVisible(ctx, accountID, limit, offset)
}

func (s *noteService) ListMine(ctx context.Context, accountID string) ([]model.Note, error) {
	return s.notes.ListByOwner(ctx, accountID)
}

// Download returns the note and bumps its download counter. Paid notes are
// only counted for their owner until purchases exist.
func (s *noteService) Download(ctx context.Context, accountID, noteID string) (*model.Note, error) {
	note, err := s.GetNote(ctx, accountID, noteID)
	if err != nil {
		return nil, err
	}

	if note.IsPaid && note.OwnerID.String() != accountID {
		return nil, fmt.Errorf("note requires purchase: %w", apperror.ErrForbidden)
	}

	if err := s.notes.IncrementDownloads(ctx, note.ID.String()); err != nil {
		return nil, err
	}
	note.Downloads++

	return note, nil
}
