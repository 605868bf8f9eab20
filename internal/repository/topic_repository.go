package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

type TopicRepository interface {
	Create(ctx context.Context, t *model.Topic) error
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	ListByForum(ctx context.Context, forumID string, offset, limit int) ([]*model.Topic, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	IncrementViews(ctx context.Context, id string) error
	TouchLastPost(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository { return &topicRepository{db: db} }

func (r *topicRepository) Create(ctx context.Context, t *model.Topic) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.LastPostAt.IsZero() {
		t.LastPostAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Omit("Forum", "Author", "Posts").Create(t).Error
}

func (r *topicRepository) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	var t model.Topic
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Forum").Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	if err := r.fillPostCounts(ctx, []*model.Topic{&t}); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByForum 置顶在前，其余按最近回帖时间倒序
func (r *topicRepository) ListByForum(ctx context.Context, forumID string, offset, limit int) ([]*model.Topic, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Topic{}).Where("forum_id = ?", forumID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Topic
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("forum_id = ?", forumID).
		Order("is_pinned DESC, last_post_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error; err != nil {
		return nil, 0, err
	}
	if err := r.fillPostCounts(ctx, res); err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

type topicCountRow struct {
	TopicID string
	N       int64
}

func (r *topicRepository) fillPostCounts(ctx context.Context, topics []*model.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	ids := make([]string, len(topics))
	byID := make(map[string]*model.Topic, len(topics))
	for i, t := range topics {
		ids[i] = t.ID
		byID[t.ID] = t
	}
	var rows []topicCountRow
	if err := r.db.WithContext(ctx).Model(&model.Post{}).
		Select("topic_id, COUNT(*) AS n").
		Where("topic_id IN ?", ids).
		Group("topic_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		byID[row.TopicID].PostCount = row.N
	}
	return nil
}

func (r *topicRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Topic{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementViews 不刷新 updated_at
func (r *topicRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Topic{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *topicRepository) TouchLastPost(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Topic{}).Where("id = ?", id).
		UpdateColumn("last_post_at", at).Error
}

// Delete 删除主题及其全部帖子（帖子的评论与反应随之删除）
func (r *topicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []string
		if err := tx.Model(&model.Post{}).Where("topic_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := deletePosts(tx, postIDs); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Topic{}).Error
	})
}
