package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

// PostFilter 列表过滤条件，空字段不参与过滤
type PostFilter struct {
	Category    string
	AuthorID    string
	TopicID     string
	OldestFirst bool
}

// PostRepository 帖子存储
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetDetail(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Category == "" {
		p.Category = model.DefaultCategory
	}
	return r.db.WithContext(ctx).Omit("Author", "Comments", "Reactions").Create(p).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDetail 加载作者、评论（含作者，按时间正序）与反应（含用户）
func (r *postRepository) GetDetail(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments.Author").
		Preload("Reactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reactions.User").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	p.CommentCount = int64(len(p.Comments))
	p.ReactionCount = int64(len(p.Reactions))
	return &p, nil
}

func (r *postRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.TopicID != "" {
		q = q.Where("topic_id = ?", f.TopicID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if f.OldestFirst {
		order = "created_at ASC"
	}
	var res []*model.Post
	if err := q.Preload("Author").Order(order).Offset(offset).Limit(limit).Find(&res).Error; err != nil {
		return nil, 0, err
	}
	if err := r.fillCounts(ctx, res); err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

type postCountRow struct {
	PostID string
	N      int64
}

// fillCounts 两次分组查询补齐评论数与反应数
func (r *postRepository) fillCounts(ctx context.Context, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	byID := make(map[string]*model.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	var comments []postCountRow
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).Group("post_id").
		Scan(&comments).Error; err != nil {
		return err
	}
	for _, row := range comments {
		byID[row.PostID].CommentCount = row.N
	}

	var reactions []postCountRow
	if err := r.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).Group("post_id").
		Scan(&reactions).Error; err != nil {
		return err
	}
	for _, row := range reactions {
		byID[row.PostID].ReactionCount = row.N
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除帖子及其评论与反应；引用它们的通知保留并置空引用
func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePosts(tx, []string{id})
	})
}

func deletePosts(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	commentIDs := tx.Model(&model.Comment{}).Select("id").Where("post_id IN ?", ids)
	if err := tx.Model(&model.Notification{}).Where("comment_id IN (?)", commentIDs).
		Update("comment_id", gorm.Expr("NULL")).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Notification{}).Where("post_id IN ?", ids).
		Update("post_id", gorm.Expr("NULL")).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id IN ?", ids).Delete(&model.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id IN ?", ids).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.Post{}).Error
}
