package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

// ForumRepository 分类与版块
type ForumRepository interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	CreateForum(ctx context.Context, f *model.Forum) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	ForumSlugExists(ctx context.Context, categoryID, slug string) (bool, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	GetForumByID(ctx context.Context, id string) (*model.Forum, error)
	GetForumBySlugs(ctx context.Context, categorySlug, forumSlug string) (*model.Forum, error)
}

type forumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) ForumRepository { return &forumRepository{db: db} }

func (r *forumRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Omit("Forums").Create(c).Error
}

func (r *forumRepository) CreateForum(ctx context.Context, f *model.Forum) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *forumRepository) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *forumRepository) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *forumRepository) ForumSlugExists(ctx context.Context, categoryID, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Forum{}).
		Where("category_id = ? AND slug = ?", categoryID, slug).Count(&n).Error
	return n > 0, err
}

// ListCategories 按 display_order 返回分类及其版块，版块带主题数与帖子数
func (r *forumRepository) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var cats []*model.Category
	err := r.db.WithContext(ctx).
		Preload("Forums", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC, name ASC") }).
		Order("display_order ASC, name ASC").
		Find(&cats).Error
	if err != nil {
		return nil, err
	}

	var forumIDs []string
	for _, c := range cats {
		for _, f := range c.Forums {
			forumIDs = append(forumIDs, f.ID)
		}
	}
	topics, posts, err := r.forumCounts(ctx, forumIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		for i := range c.Forums {
			c.Forums[i].TopicCount = topics[c.Forums[i].ID]
			c.Forums[i].PostCount = posts[c.Forums[i].ID]
		}
	}
	return cats, nil
}

func (r *forumRepository) GetForumByID(ctx context.Context, id string) (*model.Forum, error) {
	var f model.Forum
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return r.withCounts(ctx, &f)
}

func (r *forumRepository) GetForumBySlugs(ctx context.Context, categorySlug, forumSlug string) (*model.Forum, error) {
	var f model.Forum
	err := r.db.WithContext(ctx).
		Joins("JOIN categories ON categories.id = forums.category_id").
		Where("categories.slug = ? AND forums.slug = ?", categorySlug, forumSlug).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return r.withCounts(ctx, &f)
}

func (r *forumRepository) withCounts(ctx context.Context, f *model.Forum) (*model.Forum, error) {
	topics, posts, err := r.forumCounts(ctx, []string{f.ID})
	if err != nil {
		return nil, err
	}
	f.TopicCount = topics[f.ID]
	f.PostCount = posts[f.ID]
	return f, nil
}

type forumCountRow struct {
	ForumID string
	N       int64
}

func (r *forumRepository) forumCounts(ctx context.Context, forumIDs []string) (map[string]int64, map[string]int64, error) {
	topics := make(map[string]int64, len(forumIDs))
	posts := make(map[string]int64, len(forumIDs))
	if len(forumIDs) == 0 {
		return topics, posts, nil
	}

	var rows []forumCountRow
	if err := r.db.WithContext(ctx).Model(&model.Topic{}).
		Select("forum_id, COUNT(*) AS n").
		Where("forum_id IN ?", forumIDs).
		Group("forum_id").
		Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		topics[row.ForumID] = row.N
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&model.Post{}).
		Select("topics.forum_id AS forum_id, COUNT(posts.id) AS n").
		Joins("JOIN topics ON topics.id = posts.topic_id").
		Where("topics.forum_id IN ?", forumIDs).
		Group("topics.forum_id").
		Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		posts[row.ForumID] = row.N
	}
	return topics, posts, nil
}
