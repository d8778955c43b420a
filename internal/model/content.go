package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Mode controls who may see a piece of content.
type Mode string

const (
	ModePublic   Mode = "public"
	ModePrivate  Mode = "private"
	ModeUnlisted Mode = "unlisted"
	ModeMember   Mode = "member"
	ModeDraft    Mode = "draft"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePublic, ModePrivate, ModeUnlisted, ModeMember, ModeDraft:
		return m, nil
	default:
		return "", fmt.Errorf("unknown content mode %q", s)
	}
}

type ContentKind string

const (
	KindVideo  ContentKind = "video"
	KindStream ContentKind = "stream"
)

// Content is the view of a video or stream that the visibility rules operate on.
// Mutating methods are only ever called on a Clone. Cloning a nil record returns nil.
type Content interface {
	ContentKind() ContentKind
	ContentID() uint
	ContentOwnerID() uint
	ContentMode() Mode
	Clone() Content
	StripOwnerFields()
	RedactAccess(sentinel string)
	MarkLiked(liked bool)
}

type Video struct {
	gorm.Model
	OwnerID     uint   `json:"owner_id" gorm:"not null;index;uniqueIndex:idx_owner_video_slug"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"not null;uniqueIndex:idx_owner_video_slug"`
	Description string `json:"description" gorm:"type:text"`
	Thumbnail   string `json:"thumbnail"`
	Mode        Mode   `json:"mode" gorm:"not null;default:'draft';index"`
	VideoURL    string `json:"video_url"`

	// Owner only.
	SourceURL      string `json:"source_url,omitempty"`
	PlaybackSecret string `json:"playback_secret,omitempty"`

	Liked bool `json:"liked" gorm:"-"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.Slug == "" {
		name, err := uniqueSlug(tx, &Video{}, v.OwnerID, v.Title)
		if err != nil {
			return err
		}
		v.Slug = name
	}
	return nil
}

func (v *Video) ContentKind() ContentKind { return KindVideo }
func (v *Video) ContentID() uint          { return v.ID }
func (v *Video) ContentOwnerID() uint     { return v.OwnerID }
func (v *Video) ContentMode() Mode        { return v.Mode }
func (v *Video) MarkLiked(liked bool)     { v.Liked = liked }

func (v *Video) Clone() Content {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (v *Video) StripOwnerFields() {
	v.SourceURL = ""
	v.PlaybackSecret = ""
}

func (v *Video) RedactAccess(sentinel string) { v.VideoURL = sentinel }

type StreamStatus string

const (
	StreamIdle  StreamStatus = "idle"
	StreamLive  StreamStatus = "live"
	StreamEnded StreamStatus = "ended"
)

type Stream struct {
	gorm.Model
	OwnerID     uint         `json:"owner_id" gorm:"not null;index;uniqueIndex:idx_owner_stream_slug"`
	Title       string       `json:"title" gorm:"not null"`
	Slug        string       `json:"slug" gorm:"not null;uniqueIndex:idx_owner_stream_slug"`
	Mode        Mode         `json:"mode" gorm:"not null;default:'draft';index"`
	Status      StreamStatus `json:"status" gorm:"not null;default:'idle'"`
	PlaybackURL string       `json:"playback_url"`

	// Owner only.
	IngestURL string `json:"ingest_url,omitempty"`
	StreamKey string `json:"stream_key,omitempty"`

	Liked bool `json:"liked" gorm:"-"`
}

func (s *Stream) BeforeCreate(tx *gorm.DB) error {
	if s.Slug == "" {
		name, err := uniqueSlug(tx, &Stream{}, s.OwnerID, s.Title)
		if err != nil {
			return err
		}
		s.Slug = name
	}
	if s.StreamKey == "" {
		s.StreamKey = uuid.NewString()
	}
	return nil
}

func (s *Stream) ContentKind() ContentKind { return KindStream }
func (s *Stream) ContentID() uint          { return s.ID }
func (s *Stream) ContentOwnerID() uint     { return s.OwnerID }
func (s *Stream) ContentMode() Mode        { return s.Mode }
func (s *Stream) MarkLiked(liked bool)     { s.Liked = liked }

func (s *Stream) Clone() Content {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (s *Stream) StripOwnerFields() {
	s.IngestURL = ""
	s.StreamKey = ""
}

func (s *Stream) RedactAccess(sentinel string) { s.PlaybackURL = sentinel }

// uniqueSlug slugs the title and appends a short suffix when the owner already uses it.
func uniqueSlug(tx *gorm.DB, table interface{}, ownerID uint, title string) (string, error) {
	s := slug.Make(title)
	if s == "" {
		s = "untitled"
	}
	var count int64
	err := tx.Session(&gorm.Session{NewDB: true}).Unscoped().Model(table).
		Where("owner_id = ? AND slug = ?", ownerID, s).Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if count > 0 {
		s = s + "-" + uuid.NewString()[:8]
	}
	return s, nil
}
