package services

import (
	"context"
	"errors"
	"fmt"

	"blogapp/global"
	"blogapp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult is the state of a relation after a toggle.
type ToggleResult struct {
	// Active reports whether the actor is a member after the toggle.
	Active bool
	// Count is the stored counter, or the set size for derived counters.
	Count   int
	Members []string
	Message string
}

// relation describes one toggleable set: the target table it hangs off,
// the join table holding its members and, optionally, a stored counter.
type relation struct {
	kind      string
	target    func() interface{}
	member    func(targetID, actorID string) interface{}
	memberOf  func() interface{}
	targetCol string
	actorCol  string
	// counter is the target column kept equal to the set size; empty when
	// the count is derived from the set.
	counter string
	// mirror copies the counter to an external store. It runs before commit
	// while the target row is still locked.
	mirror   func(targetID string, count int) error
	notFound string
	on, off  string
}

var articleLikes = relation{
	kind:      EventArticleLike,
	target:    func() interface{} { return &models.Article{} },
	member:    func(t, a string) interface{} { return &models.ArticleLike{ArticleID: t, UserID: a} },
	memberOf:  func() interface{} { return &models.ArticleLike{} },
	targetCol: "article_id",
	actorCol:  "user_id",
	counter:   "likes",
	mirror:    RecordArticleLike,
	notFound:  "Article not found",
	on:        "Article liked successfully",
	off:       "Article unliked successfully",
}

var authorLikes = relation{
	kind:      EventAuthorLike,
	target:    func() interface{} { return &models.User{} },
	member:    func(t, a string) interface{} { return &models.AuthorLike{AuthorID: t, UserID: a} },
	memberOf:  func() interface{} { return &models.AuthorLike{} },
	targetCol: "author_id",
	actorCol:  "user_id",
	counter:   "likes",
	notFound:  "Author not found",
	on:        "Author liked successfully",
	off:       "Author unliked successfully",
}

var follows = relation{
	kind:      EventFollow,
	target:    func() interface{} { return &models.User{} },
	member:    func(t, a string) interface{} { return &models.Follow{AuthorID: t, FollowerID: a} },
	memberOf:  func() interface{} { return &models.Follow{} },
	targetCol: "author_id",
	actorCol:  "follower_id",
	notFound:  "Author not found",
	on:        "Author followed successfully",
	off:       "Author unfollowed successfully",
}

// ToggleArticleLike flips actorID's membership in the article's likedBy set.
func ToggleArticleLike(ctx context.Context, articleID, actorID string) (*ToggleResult, error) {
	res, err := toggle(ctx, articleLikes, articleID, actorID)
	if err != nil {
		return nil, err
	}
	publish(ctx, articleLikes.kind, actorID, articleID, res)
	return res, nil
}

// ToggleAuthorLike flips actorID's membership in the author's likedBy set.
func ToggleAuthorLike(ctx context.Context, authorID, actorID string) (*ToggleResult, error) {
	res, err := toggle(ctx, authorLikes, authorID, actorID)
	if err != nil {
		return nil, err
	}
	publish(ctx, authorLikes.kind, actorID, authorID, res)
	return res, nil
}

// ToggleFollow flips actorID's membership in the author's followers set.
// Following yourself is rejected before the author is looked up.
func ToggleFollow(ctx context.Context, authorID, actorID string) (*ToggleResult, error) {
	if authorID == actorID {
		return nil, ErrSelfFollow
	}
	res, err := toggle(ctx, follows, authorID, actorID)
	if err != nil {
		return nil, err
	}
	publish(ctx, follows.kind, actorID, authorID, res)
	return res, nil
}

// toggle runs the whole read-modify-write in one transaction. The target row
// is locked first, so concurrent toggles on the same target are serialized
// and the counter moves together with the set.
func toggle(ctx context.Context, rel relation, targetID, actorID string) (*ToggleResult, error) {
	res := &ToggleResult{}
	mirrored := false
	err := global.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked counterRow
		err := tx.Model(rel.target()).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").
			Where("id = ?", targetID).
			Take(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, rel.notFound)
			}
			return fmt.Errorf("load %s target: %w", rel.kind, err)
		}

		removed := tx.Where(rel.targetCol+" = ? AND "+rel.actorCol+" = ?", targetID, actorID).
			Delete(rel.memberOf())
		if removed.Error != nil {
			return fmt.Errorf("remove %s member: %w", rel.kind, removed.Error)
		}

		res.Active = removed.RowsAffected == 0
		if res.Active {
			if err := tx.Create(rel.member(targetID, actorID)).Error; err != nil {
				return fmt.Errorf("add %s member: %w", rel.kind, err)
			}
		}

		if rel.counter != "" {
			expr := gorm.Expr(rel.counter + " + 1")
			if !res.Active {
				expr = gorm.Expr("CASE WHEN " + rel.counter + " > 0 THEN " + rel.counter + " - 1 ELSE 0 END")
			}
			err := tx.Model(rel.target()).Where("id = ?", targetID).Update(rel.counter, expr).Error
			if err != nil {
				return fmt.Errorf("update %s counter: %w", rel.kind, err)
			}
		}

		members, err := memberIDs(tx, rel, targetID)
		if err != nil {
			return err
		}
		res.Members = members

		if rel.counter == "" {
			res.Count = len(members)
			return nil
		}
		var after counterRow
		if err := tx.Model(rel.target()).Select("id", "likes").Where("id = ?", targetID).Take(&after).Error; err != nil {
			return fmt.Errorf("reload %s target: %w", rel.kind, err)
		}
		res.Count = after.Likes
		if rel.mirror != nil {
			mirrored = true
			if err := rel.mirror(targetID, res.Count); err != nil {
				global.Logger.WithError(err).WithField(rel.kind, targetID).Warn("counter mirror not updated")
			}
		}
		return nil
	})
	if err != nil {
		if mirrored {
			resyncMirror(ctx, rel, targetID)
		}
		return nil, err
	}

	res.Message = rel.off
	if res.Active {
		res.Message = rel.on
	}
	return res, nil
}

// resyncMirror rewrites the mirror from the stored counter after a
// transaction that had already mirrored failed to commit.
func resyncMirror(ctx context.Context, rel relation, targetID string) {
	var row counterRow
	err := global.Db.WithContext(ctx).Model(rel.target()).Select("id", rel.counter).Where("id = ?", targetID).Take(&row).Error
	if err == nil {
		err = rel.mirror(targetID, row.Likes)
	}
	if err != nil {
		global.Logger.WithError(err).WithField(rel.kind, targetID).Warn("counter mirror not resynced")
	}
}

type counterRow struct {
	ID    string
	Likes int
}

func memberIDs(tx *gorm.DB, rel relation, targetID string) ([]string, error) {
	var ids []string
	err := tx.Model(rel.memberOf()).
		Where(rel.targetCol+" = ?", targetID).
		Order("created_at").
		Order(rel.actorCol).
		Pluck(rel.actorCol, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", rel.kind, err)
	}
	return nonNil(ids), nil
}

// ArticleLikers returns the likedBy set of an article.
func ArticleLikers(ctx context.Context, articleID string) ([]string, error) {
	return memberIDs(global.Db.WithContext(ctx), articleLikes, articleID)
}
