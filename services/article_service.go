package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"blogapp/global"
	"blogapp/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const wordsPerMinute = 200

type ArticleInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
	Image    string `json:"image"`
}

// ArticleUpdate carries the editable fields of an article. Nil fields are
// left untouched; ownership fields are not editable.
type ArticleUpdate struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Excerpt   *string `json:"excerpt"`
	Category  *string `json:"category"`
	Tags      *string `json:"tags"`
	Image     *string `json:"image"`
	Published *bool   `json:"published"`
}

type ArticleQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalArticles int64 `json:"totalArticles"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

// ReadTime estimates the reading time of content.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// NormalizeTags trims a comma separated tag list and drops empty tags.
func NormalizeTags(tags string) string {
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ",")
}

// CreateArticle publishes an article owned by author.
func CreateArticle(ctx context.Context, author *models.User, in ArticleInput) (*models.Article, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" ||
		strings.TrimSpace(in.Excerpt) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, newError(ErrValidation, "Missing required fields")
	}

	article := &models.Article{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Category:    strings.TrimSpace(in.Category),
		Tags:        NormalizeTags(in.Tags),
		Image:       in.Image,
		Author:      author.ID,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		Published:   true,
		ReadTime:    ReadTime(in.Content),
	}
	if err := global.Db.WithContext(ctx).Create(article).Error; err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	article.LikedBy = []string{}
	return article, nil
}

// ListArticles returns published articles, newest first.
func ListArticles(ctx context.Context, q ArticleQuery) ([]models.Article, Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}

	query := func() *gorm.DB {
		db := global.Db.WithContext(ctx).Model(&models.Article{}).Where("published = ?", true)
		if q.Category != "" && q.Category != "All" {
			db = db.Where("category = ?", q.Category)
		}
		if s := strings.TrimSpace(q.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", like, like, like)
		}
		return db
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("count articles: %w", err)
	}

	var articles []models.Article
	err := query().Order("created_at desc").Offset((q.Page - 1) * q.Limit).Limit(q.Limit).Find(&articles).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list articles: %w", err)
	}
	if err := fillArticleLikers(ctx, articles); err != nil {
		return nil, Pagination{}, err
	}

	pages := int(math.Ceil(float64(total) / float64(q.Limit)))
	return articles, Pagination{
		CurrentPage:   q.Page,
		TotalPages:    pages,
		TotalArticles: total,
		HasNextPage:   q.Page < pages,
		HasPrevPage:   q.Page > 1,
	}, nil
}

func fillArticleLikers(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]string, len(articles))
	for i := range articles {
		ids[i] = articles[i].ID
	}
	var likes []models.ArticleLike
	err := global.Db.WithContext(ctx).Where("article_id IN ?", ids).Order("created_at").Order("user_id").Find(&likes).Error
	if err != nil {
		return fmt.Errorf("list article likes: %w", err)
	}
	byArticle := make(map[string][]string)
	for _, l := range likes {
		byArticle[l.ArticleID] = append(byArticle[l.ArticleID], l.UserID)
	}
	for i := range articles {
		articles[i].LikedBy = nonNil(byArticle[articles[i].ID])
	}
	return nil
}

// GetArticle loads an article with its likedBy set.
func GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := global.Db.WithContext(ctx).Where("id = ?", id).Take(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Article not found")
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	likedBy, err := ArticleLikers(ctx, id)
	if err != nil {
		return nil, err
	}
	article.LikedBy = likedBy
	return &article, nil
}

// ViewArticle is GetArticle for a reader: it counts the view.
func ViewArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	err = global.Db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	article.Views++
	return article, nil
}

// UpdateArticle applies in to the article when actorID owns it.
func UpdateArticle(ctx context.Context, id, actorID string, in ArticleUpdate) (*models.Article, error) {
	article, err := GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(article, actorID, "edit"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, newError(ErrValidation, "Title must not be empty")
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, newError(ErrValidation, "Content must not be empty")
		}
		updates["content"] = *in.Content
		updates["read_time"] = ReadTime(*in.Content)
	}
	if in.Excerpt != nil {
		updates["excerpt"] = *in.Excerpt
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Tags != nil {
		updates["tags"] = NormalizeTags(*in.Tags)
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.Published != nil {
		updates["published"] = *in.Published
	}
	if len(updates) == 0 {
		return article, nil
	}

	if err := global.Db.WithContext(ctx).Model(&models.Article{ID: id}).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return GetArticle(ctx, id)
}

// DeleteArticle removes the article and its likes when actorID owns it.
func DeleteArticle(ctx context.Context, id, actorID string) error {
	article, err := GetArticle(ctx, id)
	if err != nil {
		return err
	}
	if err := AssertOwner(article, actorID, "delete"); err != nil {
		return err
	}

	err = global.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleLike{}).Error; err != nil {
			return fmt.Errorf("delete article likes: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Article{}).Error; err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := ForgetArticle(id); err != nil {
		global.Logger.WithError(err).WithField("article", id).Warn("like ranking not cleared")
	}
	return nil
}

// ArticleTitles maps article ids to titles, skipping unknown ids.
func ArticleTitles(ctx context.Context, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}
	var rows []models.Article
	if err := global.Db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load article titles: %w", err)
	}
	for _, r := range rows {
		titles[r.ID] = r.Title
	}
	return titles, nil
}

// ArticleLikes returns the like count of an article, preferring the Redis
// mirror and falling back to the database.
func ArticleLikes(ctx context.Context, id string) (int, error) {
	likes, ok, err := CachedArticleLikes(id)
	if err != nil {
		global.Logger.WithError(err).WithField("article", id).Warn("like cache read failed")
	}
	if ok {
		return likes, nil
	}
	var row counterRow
	err = global.Db.WithContext(ctx).Model(&models.Article{}).Select("id", "likes").Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, newError(ErrNotFound, "Article not found")
		}
		return 0, fmt.Errorf("load article likes: %w", err)
	}
	return row.Likes, nil
}
