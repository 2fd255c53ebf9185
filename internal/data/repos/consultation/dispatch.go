package consultation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinicscribe-backend/internal/domain"
	"github.com/yungbote/clinicscribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type AppointmentDispatchRepo interface {
	Create(dbc dbctx.Context, rows []*types.AppointmentDispatch) ([]*types.AppointmentDispatch, error)
	ListByConsultation(dbc dbctx.Context, consultationID uuid.UUID) ([]*types.AppointmentDispatch, error)
	CountByStatus(dbc dbctx.Context, consultationID uuid.UUID, status string) (int64, error)
}

type appointmentDispatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppointmentDispatchRepo(db *gorm.DB, baseLog *logger.Logger) AppointmentDispatchRepo {
	return &appointmentDispatchRepo{db: db, log: baseLog.With("repo", "AppointmentDispatchRepo")}
}

func (r *appointmentDispatchRepo) Create(dbc dbctx.Context, rows []*types.AppointmentDispatch) ([]*types.AppointmentDispatch, error) {
	if len(rows) == 0 {
		return []*types.AppointmentDispatch{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *appointmentDispatchRepo) ListByConsultation(dbc dbctx.Context, consultationID uuid.UUID) ([]*types.AppointmentDispatch, error) {
	var out []*types.AppointmentDispatch
	if consultationID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("consultation_id = ?", consultationID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *appointmentDispatchRepo) CountByStatus(dbc dbctx.Context, consultationID uuid.UUID, status string) (int64, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(&types.AppointmentDispatch{}).
		Where("consultation_id = ? AND status = ?", consultationID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
