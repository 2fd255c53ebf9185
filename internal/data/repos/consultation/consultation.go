package consultation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinicscribe-backend/internal/domain"
	"github.com/yungbote/clinicscribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type ConsultationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Consultation) ([]*types.Consultation, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Consultation, error)
	GetLatestBySession(dbc dbctx.Context, sessionID string) (*types.Consultation, error)
	ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*types.Consultation, error)
}

type consultationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConsultationRepo(db *gorm.DB, baseLog *logger.Logger) ConsultationRepo {
	return &consultationRepo{db: db, log: baseLog.With("repo", "ConsultationRepo")}
}

func (r *consultationRepo) Create(dbc dbctx.Context, rows []*types.Consultation) ([]*types.Consultation, error) {
	if len(rows) == 0 {
		return []*types.Consultation{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *consultationRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Consultation, error) {
	var out []*types.Consultation
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetLatestBySession returns nil, nil when the session has no consultation.
func (r *consultationRepo) GetLatestBySession(dbc dbctx.Context, sessionID string) (*types.Consultation, error) {
	if sessionID == "" {
		return nil, nil
	}
	var row types.Consultation
	err := dbc.Conn(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *consultationRepo) ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*types.Consultation, error) {
	var out []*types.Consultation
	if sessionID == "" {
		return out, nil
	}
	q := dbc.Conn(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
