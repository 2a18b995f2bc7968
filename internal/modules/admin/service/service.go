package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/internal/modules/admin/dto"
	adminRepo "naffles.com/pointsbackend/internal/modules/admin/repository"
	pointsDto "naffles.com/pointsbackend/internal/modules/points/dto"
	pointsService "naffles.com/pointsbackend/internal/modules/points/service"
	userRepo "naffles.com/pointsbackend/internal/modules/user/repository"
	"naffles.com/pointsbackend/pkg/apperror"
)

type Service interface {
	AwardPoints(ctx context.Context, adminID uuid.UUID, input dto.AdminAdjustInput) (*pointsDto.AwardResult, error)
	DeductPoints(ctx context.Context, adminID uuid.UUID, input dto.AdminAdjustInput) (*pointsDto.DeductResult, error)
	ReverseTransaction(ctx context.Context, adminID, txID uuid.UUID) (*model.PointsTransaction, error)

	// BulkCreditCSV credits points from an uploaded sheet. Each row resolves
	// a user by wallet, twitter or discord identifier and credits its points
	// value. Rows fail independently and the report lists every outcome.
	BulkCreditCSV(ctx context.Context, adminID uuid.UUID, r io.Reader) (*dto.BulkCreditReport, error)

	CreatePartnerToken(ctx context.Context, input dto.CreatePartnerTokenInput) (*model.PartnerToken, error)
	UpdatePartnerToken(ctx context.Context, id uuid.UUID, input dto.UpdatePartnerTokenInput) (*model.PartnerToken, error)
	ListPartnerTokens(ctx context.Context) ([]model.PartnerToken, error)
	DeletePartnerToken(ctx context.Context, id uuid.UUID) error
}

type adminService struct {
	points pointsService.Service
	users  userRepo.UserRepository
	tokens adminRepo.PartnerTokenRepository
}

func NewAdminService(points pointsService.Service, users userRepo.UserRepository, tokens adminRepo.PartnerTokenRepository) Service {
	return &adminService{
		points: points,
		users:  users,
		tokens: tokens,
	}
}

func (s *adminService) AwardPoints(ctx context.Context, adminID uuid.UUID, input dto.AdminAdjustInput) (*pointsDto.AwardResult, error) {
	return s.points.AdminAward(ctx, input.UserID, adminID, input.Amount, input.Reason)
}

func (s *adminService) DeductPoints(ctx context.Context, adminID uuid.UUID, input dto.AdminAdjustInput) (*pointsDto.DeductResult, error) {
	return s.points.AdminDeduct(ctx, input.UserID, adminID, input.Amount, input.Reason)
}

func (s *adminService) ReverseTransaction(ctx context.Context, adminID, txID uuid.UUID) (*model.PointsTransaction, error) {
	return s.points.Reverse(ctx, txID, adminID)
}

func (s *adminService) BulkCreditCSV(ctx context.Context, adminID uuid.UUID, r io.Reader) (*dto.BulkCreditReport, error) {
	rows, badRows, err := ParseBulkCreditCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}

	report := &dto.BulkCreditReport{
		TotalRows: len(rows) + len(badRows),
		Rows:      badRows,
	}

	for _, row := range rows {
		result := dto.BulkCreditRowResult{
			Line:       row.Line,
			Identifier: row.Identifier,
			Points:     row.Points,
		}

		user, err := s.users.FindByIdentifier(ctx, row.IdentifierType, row.Identifier)
		if err != nil {
			result.Error = fmt.Sprintf("user not found for %s %q", row.IdentifierType, row.Identifier)
			report.Rows = append(report.Rows, result)
			continue
		}

		reason := fmt.Sprintf("bulk credit upload (%s: %s)", row.IdentifierType, row.Identifier)
		if _, err := s.points.AdminAward(ctx, user.ID, adminID, row.Points, reason); err != nil {
			result.Error = err.Error()
			report.Rows = append(report.Rows, result)
			continue
		}

		result.UserID = user.ID
		result.Success = true
		report.Rows = append(report.Rows, result)
		report.Credited++
		report.PointsGranted += row.Points
	}

	report.Failed = report.TotalRows - report.Credited
	log.Printf("📋 Bulk credit by admin %s: %d/%d rows credited, %d points granted",
		adminID, report.Credited, report.TotalRows, report.PointsGranted)

	return report, nil
}

func (s *adminService) CreatePartnerToken(ctx context.Context, input dto.CreatePartnerTokenInput) (*model.PartnerToken, error) {
	token := &model.PartnerToken{
		Name:         input.Name,
		Contract:     input.Contract,
		ChainID:      input.ChainID,
		ActivityType: input.ActivityType,
		Multiplier:   input.Multiplier,
		IsActive:     true,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *adminService) UpdatePartnerToken(ctx context.Context, id uuid.UUID, input dto.UpdatePartnerTokenInput) (*model.PartnerToken, error) {
	token, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Multiplier != nil {
		token.Multiplier = *input.Multiplier
	}
	if input.IsActive != nil {
		token.IsActive = *input.IsActive
	}

	if err := s.tokens.Update(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *adminService) ListPartnerTokens(ctx context.Context) ([]model.PartnerToken, error) {
	return s.tokens.List(ctx)
}

func (s *adminService) DeletePartnerToken(ctx context.Context, id uuid.UUID) error {
	return s.tokens.Delete(ctx, id)
}

