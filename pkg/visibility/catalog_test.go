package visibility_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
	"clipfeed_backend/internal/testutil"
	"clipfeed_backend/pkg/subscription"
	"clipfeed_backend/pkg/visibility"
	"clipfeed_backend/pkg/wallet"
)

func TestCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	catalog := visibility.NewCatalog(db)
	owner := testutil.Account(t, db, "owner", 0, 0)

	v := &model.Video{OwnerID: owner.ID, Title: "Hello World", Mode: model.ModePublic}
	require.NoError(t, catalog.CreateVideo(ctx, v))
	assert.Equal(t, "hello-world", v.Slug)

	dup := &model.Video{OwnerID: owner.ID, Title: "Hello world!", Mode: model.ModePublic}
	require.NoError(t, catalog.CreateVideo(ctx, dup))
	assert.NotEqual(t, v.Slug, dup.Slug)
	assert.Contains(t, dup.Slug, "hello-world-")

	s := &model.Stream{OwnerID: owner.ID, Title: "Live now", Mode: model.ModeMember}
	require.NoError(t, catalog.CreateStream(ctx, s))
	assert.NotEmpty(t, s.StreamKey)

	loaded, err := catalog.Stream(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StreamIdle, loaded.Status)
	assert.Equal(t, s.StreamKey, loaded.StreamKey)

	got, err := catalog.Get(ctx, model.KindVideo, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ContentID())

	_, err = catalog.Get(ctx, model.KindStream, 999)
	assert.ErrorIs(t, err, visibility.ErrNotFound)
	_, err = catalog.Get(ctx, model.ContentKind("podcast"), v.ID)
	assert.ErrorIs(t, err, visibility.ErrNotFound)

	videos, err := catalog.VideosByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 2)

	streams, err := catalog.StreamsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, model.KindStream, streams[0].ContentKind())
}

func TestCreateFailsWhenSlugLookupFails(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	catalog := visibility.NewCatalog(db)
	owner := testutil.Account(t, db, "owner", 0, 0)

	boom := errors.New("boom")
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:fail_query", func(tx *gorm.DB) {
		tx.AddError(boom)
	}))
	err := catalog.CreateVideo(ctx, &model.Video{OwnerID: owner.ID, Title: "Hello", Mode: model.ModePublic})
	assert.ErrorIs(t, err, boom)
	err = catalog.CreateStream(ctx, &model.Stream{OwnerID: owner.ID, Title: "Hello", Mode: model.ModePublic})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, db.Callback().Query().Remove("test:fail_query"))

	var videos, streams int64
	require.NoError(t, db.Model(&model.Video{}).Count(&videos).Error)
	require.NoError(t, db.Model(&model.Stream{}).Count(&streams).Error)
	assert.Zero(t, videos)
	assert.Zero(t, streams)
}

func TestLikeHistory(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	likes := visibility.NewLikeHistory(db)

	ok, err := likes.HasLiked(ctx, model.KindVideo, 1, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, likes.Like(ctx, 7, model.KindVideo, 1))
	require.NoError(t, likes.Like(ctx, 7, model.KindVideo, 1))

	ok, err = likes.HasLiked(ctx, model.KindVideo, 1, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same id, other kind.
	ok, err = likes.HasLiked(ctx, model.KindStream, 1, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	var n int64
	require.NoError(t, db.Model(&model.Like{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, likes.Unlike(ctx, 7, model.KindVideo, 1))
	ok, err = likes.HasLiked(ctx, model.KindVideo, 1, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateWithEngine(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock()
	engine := subscription.NewEngine(testutil.NewTransactor(db), wallet.NewLedger(), subscription.WithClock(clock.Now))
	gate := visibility.NewGate(engine, visibility.NewLikeHistory(db))
	catalog := visibility.NewCatalog(db)

	owner := testutil.Account(t, db, "owner", 0, 0)
	fan := testutil.Account(t, db, "fan", 0, 100)
	pkg := testutil.Package(t, db, model.PackageMembership, 50, model.DurationDay, 1)

	v := &model.Video{OwnerID: owner.ID, Title: "Backstage", Mode: model.ModeMember, VideoURL: "https://cdn/v.m3u8"}
	require.NoError(t, catalog.CreateVideo(ctx, v))

	got, err := gate.Project(ctx, v, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, visibility.MembershipRequiredSentinel, got.(*model.Video).VideoURL)

	_, err = engine.Join(ctx, fan.ID, owner.ID, pkg.ID)
	require.NoError(t, err)

	got, err = gate.Project(ctx, v, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/v.m3u8", got.(*model.Video).VideoURL)

	// Lapsed but not yet swept.
	clock.Advance(25 * time.Hour)
	got, err = gate.Project(ctx, v, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, visibility.MembershipRequiredSentinel, got.(*model.Video).VideoURL)
}
