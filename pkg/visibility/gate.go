// Package visibility decides what a requester may see of a video or stream.
package visibility

import (
	"context"
	"errors"
	"fmt"

	"clipfeed_backend/internal/model"
)

// Placeholders written into the access field of content the requester may not play. The field
// stays present so list responses keep one shape.
const (
	PrivateSentinel            = "content:private"
	MembershipRequiredSentinel = "content:members-only"
)

var (
	// ErrNotFound covers both missing content and drafts seen by anyone but their owner.
	ErrNotFound    = errors.New("content not found")
	ErrUnknownMode = errors.New("unknown content mode")
)

type MembershipChecker interface {
	IsActiveMember(ctx context.Context, requesterID, ownerID uint) (bool, error)
}

type LikeChecker interface {
	HasLiked(ctx context.Context, kind model.ContentKind, contentID, requesterID uint) (bool, error)
}

// Gate projects content records for a requester. It never writes the record it is given.
type Gate struct {
	members MembershipChecker
	likes   LikeChecker
}

func NewGate(members MembershipChecker, likes LikeChecker) *Gate {
	return &Gate{members: members, likes: likes}
}

// Project returns the view of content that requesterID is allowed to see. A requesterID of 0
// is anonymous.
func (g *Gate) Project(ctx context.Context, content model.Content, requesterID uint) (model.Content, error) {
	if content == nil {
		return nil, ErrNotFound
	}
	view := content.Clone()
	if view == nil {
		return nil, ErrNotFound
	}

	if requesterID != 0 && requesterID == content.ContentOwnerID() {
		return view, nil
	}

	view.StripOwnerFields()

	switch mode := view.ContentMode(); mode {
	case model.ModeDraft:
		return nil, ErrNotFound
	case model.ModePrivate:
		view.RedactAccess(PrivateSentinel)
	case model.ModeMember:
		ok, err := g.members.IsActiveMember(ctx, requesterID, view.ContentOwnerID())
		if err != nil {
			return nil, err
		}
		if !ok {
			view.RedactAccess(MembershipRequiredSentinel)
		}
	case model.ModePublic, model.ModeUnlisted:
		liked, err := g.hasLiked(ctx, view, requesterID)
		if err != nil {
			return nil, err
		}
		view.MarkLiked(liked)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
	return view, nil
}

// ProjectAll projects a list. Items the requester may not see at all are left out instead of
// failing the whole list.
func (g *Gate) ProjectAll(ctx context.Context, items []model.Content, requesterID uint) ([]model.Content, error) {
	out := make([]model.Content, 0, len(items))
	for _, item := range items {
		view, err := g.Project(ctx, item, requesterID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (g *Gate) hasLiked(ctx context.Context, c model.Content, requesterID uint) (bool, error) {
	if requesterID == 0 || g.likes == nil {
		return false, nil
	}
	return g.likes.HasLiked(ctx, c.ContentKind(), c.ContentID(), requesterID)
}
