package postgres

import (
	"github.com/commercemobile/storefront-admin/internal"
	groupDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/group"
	"github.com/commercemobile/storefront-admin/internal/group"
	"gorm.io/gorm"
)

// GroupRepository implements the group.Repository interface using GORM
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) group.Repository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(g *group.UserGroup) error {
	record, err := group.ToDataModel(g)
	if err != nil {
		return err
	}
	return r.db.Create(record).Error
}

func (r *GroupRepository) GetByID(id string) (*group.UserGroup, error) {
	var record groupDatamodel.UserGroup
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrGroupNotFound
		}
		return nil, err
	}
	return group.FromDataModel(&record)
}

func (r *GroupRepository) List() ([]*group.UserGroup, error) {
	var records []groupDatamodel.UserGroup
	if err := r.db.Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]*group.UserGroup, 0, len(records))
	for i := range records {
		g, err := group.FromDataModel(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// ListForUser filters membership in Go: the member list is a JSON text
// column, and group counts are small enough that a scan is fine.
func (r *GroupRepository) ListForUser(userID string) ([]*group.UserGroup, error) {
	groups, err := r.List()
	if err != nil {
		return nil, err
	}

	var out []*group.UserGroup
	for _, g := range groups {
		if g.HasMember(userID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *GroupRepository) Update(g *group.UserGroup) error {
	record, err := group.ToDataModel(g)
	if err != nil {
		return err
	}
	result := r.db.Model(&groupDatamodel.UserGroup{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"name":        record.Name,
			"description": record.Description,
			"permissions": record.Permissions,
			"members":     record.Members,
			"updated_at":  record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&groupDatamodel.UserGroup{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrGroupNotFound
	}
	return nil
}
