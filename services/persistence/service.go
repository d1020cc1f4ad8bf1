package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"github.com/upb/ciw-intake/services"
	"go.uber.org/zap"
)

var errNoContractID = errors.New("contract write returned no id")

// Service writes accepted records to the system of record
type Service struct {
	repos  *repositories.Repositories
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewService creates a new persistence Service
func NewService(repos *repositories.Repositories, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		repos:  repos,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Persist writes the person, the contract header, the association and both
// contact lists in one transaction and returns the new person ID. The ID is
// 0 whenever the error is non-nil; nothing is kept in that case.
func (s *Service) Persist(ctx context.Context, r *models.Record, source models.ContractSource) (int64, error) {
	if !source.IsValid() {
		return 0, services.WrapError(services.ErrUnknownContractSource, fmt.Errorf("contract source %q", source))
	}

	person, err := PersonFromRecord(r)
	if err != nil {
		return 0, err
	}
	contract, err := ContractFromRecord(r)
	if err != nil {
		return 0, err
	}

	personID, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (int64, error) {
		personID, err := s.repos.Persons.Insert(ctx, person)
		if err != nil {
			return 0, err
		}
		if personID == 0 {
			return 0, services.ErrPersonRejected
		}

		contractID, err := s.writeContract(ctx, contract, r.IsChildCare(), source)
		if err != nil {
			return 0, err
		}
		if contractID == 0 {
			return 0, services.WrapError(services.ErrDatabaseError, errNoContractID)
		}

		if err := s.repos.Contracts.AssociatePerson(ctx, personID, contractID); err != nil {
			return 0, err
		}
		for _, c := range r.VendorContacts() {
			if err := s.repos.Contacts.InsertVendorContact(ctx, contractID, c); err != nil {
				return 0, err
			}
		}
		for _, c := range r.SponsorContacts() {
			if err := s.repos.Contacts.InsertSponsorContact(ctx, personID, c); err != nil {
				return 0, err
			}
		}

		s.logger.Debug("record persisted",
			zap.Int64("person_id", personID),
			zap.Int64("contract_id", contractID),
			zap.Int("vendor_contacts", len(r.VendorContacts())),
			zap.Int("sponsor_contacts", len(r.SponsorContacts())))
		return personID, nil
	})
	if err != nil {
		if services.IsRejectedError(err) {
			s.logger.Warn("person insert rejected, transaction rolled back")
		} else {
			s.logger.Error("failed to persist record", zap.Error(err))
		}
		return 0, err
	}

	return personID, nil
}

// writeContract picks the header write variant. Child care contracts always
// use their own variant, whatever the source.
func (s *Service) writeContract(ctx context.Context, c *models.ContractHeader, childCare bool, source models.ContractSource) (int64, error) {
	if childCare {
		return s.repos.Contracts.InsertChildCare(ctx, c)
	}

	switch source {
	case models.ContractSourceFPDS:
		return s.repos.Contracts.UpsertFromFPDS(ctx, c)
	case models.ContractSourceSAM:
		return s.repos.Contracts.UpsertFromSAM(ctx, c)
	default:
		return s.repos.Contracts.Upsert(ctx, c)
	}
}
