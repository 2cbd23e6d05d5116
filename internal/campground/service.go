package campground

import (
	"context"
	"errors"
	"strings"

	"backend-campbook/internal/db"
	"backend-campbook/internal/shared/apperr"
	"backend-campbook/internal/shared/validate"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

var (
	ErrNotFound  = apperr.NotFound("Campground not found")
	ErrNameTaken = apperr.Validation("duplicate_name", "campground name already exists")
)

type Service struct {
	db  db.Querier
	log logrus.FieldLogger
}

func NewService(db db.Querier, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Create(ctx context.Context, input Input) (Campground, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return Campground{}, err
	}
	cg := Campground{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Address:   input.Address,
		Zipcode:   input.Zipcode,
		Telephone: input.Telephone,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO campgrounds (id, name, address, zipcode, telephone)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, cg.ID, cg.Name, cg.Address, cg.Zipcode, cg.Telephone)
	if err := row.Scan(&cg.CreatedAt); err != nil {
		return Campground{}, writeErr("could not create campground", err)
	}
	return cg, nil
}

func (s *Service) Get(ctx context.Context, id string) (Campground, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, address, zipcode, telephone, created_at
		FROM campgrounds WHERE id=$1
	`, id)
	var cg Campground
	if err := row.Scan(&cg.ID, &cg.Name, &cg.Address, &cg.Zipcode, &cg.Telephone, &cg.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campground{}, ErrNotFound
		}
		return Campground{}, apperr.Internal("could not load campground", err)
	}
	return cg, nil
}

func (s *Service) List(ctx context.Context) ([]Campground, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, zipcode, telephone, created_at
		FROM campgrounds ORDER BY name
	`)
	if err != nil {
		return nil, apperr.Internal("could not list campgrounds", err)
	}
	defer rows.Close()

	out := []Campground{}
	for rows.Next() {
		var cg Campground
		if err := rows.Scan(&cg.ID, &cg.Name, &cg.Address, &cg.Zipcode, &cg.Telephone, &cg.CreatedAt); err != nil {
			return nil, apperr.Internal("could not list campgrounds", err)
		}
		out = append(out, cg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("could not list campgrounds", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Campground, error) {
	patch.Name = strings.TrimSpace(patch.Name)
	if err := validate.Struct(patch); err != nil {
		return Campground{}, err
	}
	cg, err := s.Get(ctx, id)
	if err != nil {
		return Campground{}, err
	}
	if patch.Name != "" {
		cg.Name = patch.Name
	}
	if patch.Address != "" {
		cg.Address = patch.Address
	}
	if patch.Zipcode != "" {
		cg.Zipcode = patch.Zipcode
	}
	if patch.Telephone != "" {
		cg.Telephone = patch.Telephone
	}

	_, err = s.db.Exec(ctx, `
		UPDATE campgrounds
		SET name=$2, address=$3, zipcode=$4, telephone=$5
		WHERE id=$1
	`, cg.ID, cg.Name, cg.Address, cg.Zipcode, cg.Telephone)
	if err != nil {
		return Campground{}, writeErr("could not update campground", err)
	}
	return cg, nil
}

// Delete removes the campground; its bookings go with it (ON DELETE CASCADE).
func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM campgrounds WHERE id=$1`, id)
	if err != nil {
		return apperr.Internal("could not delete campground", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func writeErr(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrNameTaken
	}
	return apperr.Internal(msg, err)
}
