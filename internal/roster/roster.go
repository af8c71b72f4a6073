// Package roster resolves members by the nickname they type on public pages.
package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
)

// MemberLister is the slice of storage a lookup needs.
type MemberLister interface {
	ListMembers(ctx context.Context, q storage.MemberQuery) ([]models.Member, error)
}

// ResolveNickname finds the member a typed nickname refers to.
//
// Algorithm:
// - Trim the input; empty input never matches
// - Exact (case-sensitive) match wins
// - Otherwise fall back to a case-insensitive match
// - Several case-insensitive hits resolve to the lowest member ID
//
// A miss is reported with ok=false, not an error.
func ResolveNickname(members []models.Member, nickname string) (*models.Member, bool) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, false
	}

	var fallback *models.Member
	for i := range members {
		m := &members[i]
		if m.Nickname == nickname {
			return m, true
		}
		if strings.EqualFold(m.Nickname, nickname) {
			if fallback == nil || m.ID < fallback.ID {
				fallback = m
			}
		}
	}
	return fallback, fallback != nil
}

// Lookup loads every member and resolves the nickname against them.
func Lookup(ctx context.Context, lister MemberLister, nickname string) (*models.Member, bool, error) {
	members, err := lister.ListMembers(ctx, storage.MemberQuery{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to list members: %w", err)
	}
	m, ok := ResolveNickname(members, nickname)
	return m, ok, nil
}
