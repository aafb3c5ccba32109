package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"exile-bot/internal/logger"
	"exile-bot/internal/models"
)

// PersistenceError reports a failed write to the sanction store. Pipelines
// treat it as fatal for the current run.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not %s sanction for %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SanctionRepository is the storage the service reads and writes.
type SanctionRepository interface {
	Get(ctx context.Context, id string) (*models.SanctionRecord, error)
	Upsert(ctx context.Context, record *models.SanctionRecord) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.SanctionRecord, error)
	Count(ctx context.Context) (int64, error)
}

// SanctionService records who is exiled and why. Reads never fail: a lookup
// error is logged and reported as "not sanctioned".
type SanctionService struct {
	repo SanctionRepository
}

func NewSanctionService(repo SanctionRepository) *SanctionService {
	return &SanctionService{repo: repo}
}

// IsSanctioned reports whether id has an active record and, if so, the
// display name captured when the sanction was applied.
func (s *SanctionService) IsSanctioned(ctx context.Context, id string) (bool, string) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		logger.Warningf("Error looking up sanction for %s: %v", id, err)
		return false, ""
	}
	if rec == nil {
		return false, ""
	}
	return true, rec.OldNickname
}

// Reason returns the stored reason for id, or "" if there is none.
func (s *SanctionService) Reason(ctx context.Context, id string) string {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		logger.Warningf("Error looking up sanction reason for %s: %v", id, err)
		return ""
	}
	if rec == nil {
		return ""
	}
	return rec.Reason
}

// ListAll returns every record, or an empty slice if the scan fails.
func (s *SanctionService) ListAll(ctx context.Context) []models.SanctionRecord {
	records, err := s.repo.List(ctx)
	if err != nil {
		logger.Warningf("Error listing sanctions: %v", err)
		return []models.SanctionRecord{}
	}
	return records
}

// Count returns the number of active sanctions, or -1 if it is unknown.
func (s *SanctionService) Count(ctx context.Context) int64 {
	n, err := s.repo.Count(ctx)
	if err != nil {
		logger.Warningf("Error counting sanctions: %v", err)
		return -1
	}
	return n
}

// Put records a sanction, replacing any existing record for id.
func (s *SanctionService) Put(ctx context.Context, id, priorName, reason string) error {
	err := s.repo.Upsert(ctx, &models.SanctionRecord{
		ID:          id,
		OldNickname: priorName,
		Reason:      reason,
	})
	if err != nil {
		return &PersistenceError{Op: "save", ID: id, Err: err}
	}
	return nil
}

// Delete removes the sanction for id.
func (s *SanctionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

var userMentionRegex = regexp.MustCompile(`<@!?[0-9]+>`)

// NormalizeReason strips command triggers and user mentions from message
// content and trims the result.
func NormalizeReason(content string, triggers []string) string {
	sorted := append([]string(nil), triggers...)
	// longest first so "!releaseall" goes before "!release"
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, t := range sorted {
		if t == "" {
			continue
		}
		content = strings.ReplaceAll(content, t, "")
	}
	content = userMentionRegex.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
