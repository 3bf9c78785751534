package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ByLCY/vellum/export"
	"github.com/ByLCY/vellum/renderer"
)

// Meme is a published image as shown in the feed.
type Meme struct {
	ID          string
	ImageURL    string
	UserID      string
	CreatedAt   time.Time
	Upvotes     int
	UpvotedByMe bool
}

// Publisher exports scenes and records them for the signed-in user.
type Publisher struct {
	identity Identity
	blobs    BlobStore
	records  Records
	exporter *export.Exporter
	now      func() time.Time
	log      *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithNow overrides the clock.
func WithNow(now func() time.Time) PublisherOption {
	return func(p *Publisher) { p.now = now }
}

// WithPublishLogger sets the logger.
func WithPublishLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPublisher wires the collaborators together.
func NewPublisher(identity Identity, blobs BlobStore, records Records, exporter *export.Exporter, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		identity: identity,
		blobs:    blobs,
		records:  records,
		exporter: exporter,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BlobPath returns the storage path of a meme image.
func BlobPath(userID string, t time.Time) string {
	return fmt.Sprintf("memes/%s/%d.jpg", userID, t.UnixMilli())
}

// Publish exports scene, uploads it and creates the meme record. The
// returned error wraps the failing step; nothing is retried.
func (p *Publisher) Publish(ctx context.Context, scene renderer.Scene) (Meme, error) {
	user, ok := p.identity.CurrentUser()
	if !ok {
		return Meme{}, ErrSignedOut
	}
	res, err := p.exporter.Export(ctx, scene)
	if err != nil {
		return Meme{}, fmt.Errorf("导出失败: %w", err)
	}

	ts := p.now()
	url, err := p.blobs.UploadBlob(ctx, BlobPath(user.ID, ts), res.Data, export.ContentType)
	if err != nil {
		return Meme{}, fmt.Errorf("上传失败: %w", err)
	}
	id, err := p.records.CreateRecord(ctx, CollectionMemes, Fields{
		FieldImageURL:  url,
		FieldUserID:    user.ID,
		FieldCreatedAt: ts.UnixMilli(),
	})
	if err != nil {
		return Meme{}, fmt.Errorf("保存记录失败: %w", err)
	}
	p.log.Info("已发布", "meme", id, "user", user.ID, "url", url)
	return Meme{ID: id, ImageURL: url, UserID: user.ID, CreatedAt: time.UnixMilli(ts.UnixMilli())}, nil
}

// ToggleUpvote adds the user's upvote to a meme, or removes it when it
// already exists. It reports whether the meme is upvoted afterwards.
func (p *Publisher) ToggleUpvote(ctx context.Context, memeID string) (bool, error) {
	user, ok := p.identity.CurrentUser()
	if !ok {
		return false, ErrSignedOut
	}
	existing, err := p.records.Query(ctx, Query{
		Collection: CollectionUpvotes,
		Where:      Fields{FieldMemeID: memeID, FieldUserID: user.ID},
	})
	if err != nil {
		return false, fmt.Errorf("查询点赞失败: %w", err)
	}
	if len(existing) > 0 {
		for _, rec := range existing {
			if err := p.records.DeleteRecord(ctx, CollectionUpvotes, rec.ID); err != nil {
				return true, fmt.Errorf("取消点赞失败: %w", err)
			}
		}
		return false, nil
	}
	_, err = p.records.CreateRecord(ctx, CollectionUpvotes, Fields{
		FieldMemeID:    memeID,
		FieldUserID:    user.ID,
		FieldCreatedAt: p.now().UnixMilli(),
	})
	if err != nil {
		return false, fmt.Errorf("点赞失败: %w", err)
	}
	return true, nil
}

// DeleteMeme removes a meme owned by the current user together with its
// upvotes.
func (p *Publisher) DeleteMeme(ctx context.Context, memeID string) error {
	user, ok := p.identity.CurrentUser()
	if !ok {
		return ErrSignedOut
	}
	recs, err := p.records.Query(ctx, Query{Collection: CollectionMemes})
	if err != nil {
		return err
	}
	var owner string
	found := false
	for _, rec := range recs {
		if rec.ID == memeID {
			owner, found = fmt.Sprint(rec.Fields[FieldUserID]), true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, memeID)
	}
	if owner != user.ID {
		return ErrForbidden
	}
	votes, err := p.records.Query(ctx, Query{Collection: CollectionUpvotes, Where: Fields{FieldMemeID: memeID}})
	if err != nil {
		return err
	}
	for _, v := range votes {
		if err := p.records.DeleteRecord(ctx, CollectionUpvotes, v.ID); err != nil {
			return err
		}
	}
	return p.records.DeleteRecord(ctx, CollectionMemes, memeID)
}

// Feed returns all memes, newest first, with upvote counts.
func (p *Publisher) Feed(ctx context.Context) ([]Meme, error) {
	return p.Recent(ctx, 0)
}

// Recent returns the newest limit memes with upvote counts. A limit of zero
// or less returns all of them.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]Meme, error) {
	q := feedQuery
	q.Limit = limit
	memes, err := p.records.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}
	votes, err := p.records.Query(ctx, Query{Collection: CollectionUpvotes})
	if err != nil {
		return nil, fmt.Errorf("查询点赞失败: %w", err)
	}
	user, _ := p.identity.CurrentUser()
	return buildFeed(memes, votes, user.ID), nil
}

// WatchFeed calls fn with the feed now and after every meme or upvote change.
func (p *Publisher) WatchFeed(ctx context.Context, fn func([]Meme)) (cancel func()) {
	refresh := func([]Record) {
		feed, err := p.Feed(ctx)
		if err != nil {
			p.log.Warn("刷新动态失败", "error", err)
			return
		}
		fn(feed)
	}
	stopMemes := p.records.Subscribe(feedQuery, refresh)
	stopVotes := p.records.Subscribe(Query{Collection: CollectionUpvotes}, refresh)
	return func() {
		stopMemes()
		stopVotes()
	}
}

var feedQuery = Query{Collection: CollectionMemes, OrderBy: FieldCreatedAt, Descending: true}

func buildFeed(memes, votes []Record, userID string) []Meme {
	counts := map[string]int{}
	mine := map[string]bool{}
	for _, v := range votes {
		id := fmt.Sprint(v.Fields[FieldMemeID])
		counts[id]++
		if userID != "" && fmt.Sprint(v.Fields[FieldUserID]) == userID {
			mine[id] = true
		}
	}
	out := make([]Meme, 0, len(memes))
	for _, rec := range memes {
		m := Meme{
			ID:          rec.ID,
			ImageURL:    fmt.Sprint(rec.Fields[FieldImageURL]),
			UserID:      fmt.Sprint(rec.Fields[FieldUserID]),
			Upvotes:     counts[rec.ID],
			UpvotedByMe: mine[rec.ID],
		}
		if ms, ok := millis(rec.Fields[FieldCreatedAt]); ok {
			m.CreatedAt = time.UnixMilli(ms)
		}
		out = append(out, m)
	}
	return out
}

func millis(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Age formats how long ago the meme was created, relative to now.
func (m Meme) Age(now time.Time) string {
	d := now.Sub(m.CreatedAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return m.CreatedAt.Format("Jan 2, 2006")
	}
}
