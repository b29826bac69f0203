package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound - запрошенная запись отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict - запись изменилась с момента чтения, CAS не прошёл.
	ErrVersionConflict = errors.New("version conflict")
)

// ProjectRepository - интерфейс для работы с проектами. Все мутации принимают
// версию агрегата, прочитанную вызывающей стороной, и применяются только если
// версия в базе не изменилась.
type ProjectRepository interface {
	CreateProject(ctx context.Context, clientID string, req models.ProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	ListProjects(ctx context.Context, status models.ProjectStatus, clientID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, projectID string, version int32, updateFields map[string]interface{}) (*models.Project, error)
	UpdateProjectStatus(ctx context.Context, projectID string, version int32, status models.ProjectStatus) (*models.Project, error)
	SetContract(ctx context.Context, projectID string, version int32, contract *models.Contract) (*models.Project, error)
	AcceptContract(ctx context.Context, projectID string, version int32, freelancerID string) (*models.Project, error)
}

// PostgresProjectRepository - реализация ProjectRepository для базы данных.
type PostgresProjectRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProjectRepository создает новый экземпляр PostgresProjectRepository.
func NewPostgresProjectRepository(db *pgxpool.Pool) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

const projectColumns = `id, title, description, requirements, deadline, client_id, status,
	contract_freelancer_id, contract_price, contract_deadline, contract_status, contract_updated_at,
	version, created_at`

type projectRow interface {
	Scan(dest ...interface{}) error
}

func scanProject(row projectRow) (*models.Project, error) {
	var project models.Project
	var contractFreelancer, contractStatus *string
	var contractPrice *float64
	var contractDeadline, contractUpdatedAt *time.Time

	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Requirements,
		&project.Deadline,
		&project.ClientID,
		&project.Status,
		&contractFreelancer,
		&contractPrice,
		&contractDeadline,
		&contractStatus,
		&contractUpdatedAt,
		&project.Version,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if contractStatus != nil {
		project.Contract = &models.Contract{
			FreelancerID: *contractFreelancer,
			Price:        *contractPrice,
			Deadline:     *contractDeadline,
			Status:       models.ContractStatus(*contractStatus),
			UpdatedAt:    *contractUpdatedAt,
		}
	}
	return &project, nil
}

// CreateProject создает новый проект в статусе open.
func (r *PostgresProjectRepository) CreateProject(ctx context.Context, clientID string, req models.ProjectRequest) (*models.Project, error) {
	newProject := models.Project{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Deadline:     req.Deadline,
		ClientID:     clientID,
		Status:       models.OpenProject,
		Version:      1,
		CreatedAt:    time.Now().UTC(),
	}
	insertQuery := `INSERT INTO project (id, title, description, requirements, deadline, client_id, status, version, created_at)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newProject.ID,
		newProject.Title,
		newProject.Description,
		newProject.Requirements,
		newProject.Deadline,
		newProject.ClientID,
		newProject.Status,
		newProject.Version,
		newProject.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newProject, nil
}

// GetProject возвращает проект по ID вместе со встроенным контрактом.
func (r *PostgresProjectRepository) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM project WHERE id = $1`, projectColumns)
	project, err := scanProject(r.DB.QueryRow(ctx, query, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects возвращает список проектов с необязательными фильтрами по статусу и заказчику.
func (r *PostgresProjectRepository) ListProjects(ctx context.Context, status models.ProjectStatus, clientID string) ([]models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM project`, projectColumns)
	var conditions []string
	var args []interface{}

	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if clientID != "" {
		args = append(args, clientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// UpdateProject меняет описательные поля проекта при совпадении версии.
func (r *PostgresProjectRepository) UpdateProject(ctx context.Context, projectID string, version int32, updateFields map[string]interface{}) (*models.Project, error) {
	var updates []string
	args := []interface{}{projectID, version}
	argIndex := 3

	for _, field := range []string{"title", "description", "requirements", "deadline"} {
		if value, ok := updateFields[field]; ok {
			updates = append(updates, fmt.Sprintf("%s = $%d", field, argIndex))
			args = append(args, value)
			argIndex++
		}
	}
	if len(updates) == 0 {
		return nil, models.NewValidationError("no valid fields to update")
	}
	updates = append(updates, "version = version + 1")

	updateQuery := fmt.Sprintf(`UPDATE project SET %s WHERE id = $1 AND version = $2 RETURNING %s`,
		strings.Join(updates, ", "), projectColumns)

	project, err := scanProject(r.DB.QueryRow(ctx, updateQuery, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.casFailure(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProjectStatus меняет статус проекта при совпадении версии.
func (r *PostgresProjectRepository) UpdateProjectStatus(ctx context.Context, projectID string, version int32, status models.ProjectStatus) (*models.Project, error) {
	updateQuery := fmt.Sprintf(`UPDATE project SET status = $3, version = version + 1
	                           WHERE id = $1 AND version = $2 RETURNING %s`, projectColumns)
	project, err := scanProject(r.DB.QueryRow(ctx, updateQuery, projectID, version, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.casFailure(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// SetContract записывает контракт проекта при совпадении версии. Используется
// для создания, изменения, отзыва и отклонения оффера: контракт логически
// замещается, а не дублируется.
func (r *PostgresProjectRepository) SetContract(ctx context.Context, projectID string, version int32, contract *models.Contract) (*models.Project, error) {
	updateQuery := fmt.Sprintf(`
		UPDATE project
		SET contract_freelancer_id = $3, contract_price = $4, contract_deadline = $5,
		    contract_status = $6, contract_updated_at = $7, version = version + 1
		WHERE id = $1 AND version = $2 RETURNING %s`, projectColumns)
	project, err := scanProject(r.DB.QueryRow(
		ctx,
		updateQuery,
		projectID,
		version,
		contract.FreelancerID,
		contract.Price,
		contract.Deadline,
		contract.Status,
		contract.UpdatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.casFailure(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// AcceptContract принимает оффер: в одной транзакции контракт переходит в
// accepted, проект - в in progress, ожидающие предложения названного
// исполнителя помечаются accepted, остальные ожидающие - rejected.
func (r *PostgresProjectRepository) AcceptContract(ctx context.Context, projectID string, version int32, freelancerID string) (*models.Project, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updateQuery := fmt.Sprintf(`
		UPDATE project
		SET contract_status = $3, contract_updated_at = $4, status = $5, version = version + 1
		WHERE id = $1 AND version = $2 RETURNING %s`, projectColumns)
	project, err := scanProject(tx.QueryRow(
		ctx,
		updateQuery,
		projectID,
		version,
		models.AcceptedContract,
		time.Now().UTC(),
		models.InProgressProject))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.casFailure(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	acceptQuery := `UPDATE bid SET status = $1 WHERE project_id = $2 AND freelancer_id = $3 AND status = $4`
	if _, err := tx.Exec(ctx, acceptQuery, models.AcceptedBid, projectID, freelancerID, models.PendingBid); err != nil {
		return nil, err
	}
	rejectQuery := `UPDATE bid SET status = $1 WHERE project_id = $2 AND freelancer_id <> $3 AND status = $4`
	if _, err := tx.Exec(ctx, rejectQuery, models.RejectedBid, projectID, freelancerID, models.PendingBid); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

// casFailure различает пропавшую запись и проигранную гонку версий.
func (r *PostgresProjectRepository) casFailure(ctx context.Context, projectID string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM project WHERE id = $1)`
	if err := r.DB.QueryRow(ctx, query, projectID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
