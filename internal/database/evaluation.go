package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
)

const evaluationColumns = `id, lobby_id, evaluator_id, evaluated_id, rating, comment, is_report, report_reason, created_at`

func (s *Store) queryEvaluations(ctx context.Context, q string, args ...any) ([]models.Evaluation, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errs.Collaborator(err, "query evaluations")
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		var e models.Evaluation
		err := rows.Scan(&e.ID, &e.LobbyID, &e.EvaluatorID, &e.EvaluatedID, &e.Rating, &e.Comment, &e.IsReport, &e.ReportReason, &e.CreatedAt)
		if err != nil {
			return nil, errs.Collaborator(err, "scan evaluation")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Collaborator(err, "iterate evaluations")
	}
	return out, nil
}

func (s *Store) EvaluationsBy(ctx context.Context, lobbyID, evaluatorID uuid.UUID) ([]models.Evaluation, error) {
	q := `SELECT ` + evaluationColumns + ` FROM user_evaluations WHERE lobby_id = $1 AND evaluator_id = $2`
	return s.queryEvaluations(ctx, q, lobbyID, evaluatorID)
}

func (s *Store) EvaluationsFor(ctx context.Context, userID uuid.UUID) ([]models.Evaluation, error) {
	q := `SELECT ` + evaluationColumns + ` FROM user_evaluations WHERE evaluated_id = $1 ORDER BY created_at DESC`
	return s.queryEvaluations(ctx, q, userID)
}

// InsertEvaluations stores a submission atomically. A pair that was already
// evaluated makes the whole submission a conflict.
func (s *Store) InsertEvaluations(ctx context.Context, evals []models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}
	q := `
	INSERT INTO user_evaluations (id, lobby_id, evaluator_id, evaluated_id, rating, comment, is_report, report_reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, e := range evals {
			_, err := tx.Exec(ctx, q, e.ID, e.LobbyID, e.EvaluatorID, e.EvaluatedID, e.Rating, e.Comment, e.IsReport, e.ReportReason, e.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return errs.Conflict("evaluation already submitted")
	}
	if err != nil {
		return errs.Collaborator(err, "insert evaluations")
	}
	return nil
}
