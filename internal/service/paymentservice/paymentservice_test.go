package paymentservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

const referralCode = "1234567897"

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	repo    *MockRepo
	catalog *MockCatalogRepo
	users   *MockUserRepo
	ledger  *MockLedger
	storage *storage.MockStorage
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:    NewMockRepo(ctrl),
		catalog: NewMockCatalogRepo(ctrl),
		users:   NewMockUserRepo(ctrl),
		ledger:  NewMockLedger(ctrl),
		storage: storage.NewMockStorage(ctrl),
	}
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		}).AnyTimes()

	service := New(m.repo, m.catalog, m.users, m.ledger, m.storage, txManager, 10)
	service.now = func() time.Time { return testNow }
	defer ctrl.Finish()
	return service, m
}

func TestCreate(t *testing.T) {
	activePackage := &domain.Package{ID: 2, Title: "Go basics", Price: domain.Rupees(1500), IsActive: true}
	esewa := &domain.PaymentMethod{Code: "esewa", Name: "eSewa", IsActive: true}

	tests := []struct {
		name          string
		referral      string
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name:     "Creates pending transaction with price snapshot",
			referral: referralCode,
			prepareMock: func(m mocks) {
				m.catalog.EXPECT().FindPackage(gomock.Any(), 2).Return(activePackage, nil)
				m.catalog.EXPECT().FindPaymentMethod(gomock.Any(), "esewa").Return(esewa, nil)
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(&domain.User{ID: 9, Status: domain.UserActive}, nil)
				m.repo.EXPECT().Create(gomock.Any(), &domain.Transaction{
					UserID:        1,
					PackageID:     2,
					Amount:        domain.Rupees(1500),
					PaymentMethod: "esewa",
					Status:        domain.TransactionPending,
					ReferralCode:  referralCode,
				}).DoAndReturn(func(ctx context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
					tr.ID = 30
					return tr, nil
				})
			},
		},
		{
			name: "Inactive package",
			prepareMock: func(m mocks) {
				m.catalog.EXPECT().FindPackage(gomock.Any(), 2).Return(&domain.Package{ID: 2, IsActive: false}, nil)
			},
			expectedError: ErrPackageNotFound,
		},
		{
			name: "Unknown payment method",
			prepareMock: func(m mocks) {
				m.catalog.EXPECT().FindPackage(gomock.Any(), 2).Return(activePackage, nil)
				m.catalog.EXPECT().FindPaymentMethod(gomock.Any(), "esewa").Return(nil, nil)
			},
			expectedError: ErrPaymentMethodNotFound,
		},
		{
			name:     "Malformed referral code",
			referral: "1234567890",
			prepareMock: func(m mocks) {
				m.catalog.EXPECT().FindPackage(gomock.Any(), 2).Return(activePackage, nil)
				m.catalog.EXPECT().FindPaymentMethod(gomock.Any(), "esewa").Return(esewa, nil)
			},
			expectedError: ErrInvalidReferral,
		},
		{
			name:     "Own referral code",
			referral: referralCode,
			prepareMock: func(m mocks) {
				m.catalog.EXPECT().FindPackage(gomock.Any(), 2).Return(activePackage, nil)
				m.catalog.EXPECT().FindPaymentMethod(gomock.Any(), "esewa").Return(esewa, nil)
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(&domain.User{ID: 1, Status: domain.UserActive}, nil)
			},
			expectedError: ErrSelfReferral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			tr, err := service.Create(context.Background(), 1, 2, "esewa", tt.referral)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 30, tr.ID)
			assert.Equal(t, "Go basics", tr.PackageTitle)
		})
	}
}

func TestAttachProof(t *testing.T) {
	file := storage.File{Data: []byte("png"), Ext: ".png"}

	tests := []struct {
		name          string
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name: "First upload queues verification",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().FindByID(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, UserID: 1, Status: domain.TransactionPending}, nil)
				m.storage.EXPECT().Save(gomock.Any(), "proofs", file.Data, ".png").Return("proofs/a.png", nil)
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, UserID: 1, Status: domain.TransactionPending}, nil)
				m.repo.EXPECT().Update(gomock.Any(), &domain.Transaction{
					ID:        30,
					UserID:    1,
					Proof:     "proofs/a.png",
					Status:    domain.TransactionPendingVerification,
					UpdatedAt: testNow,
				}).Return(nil)
			},
		},
		{
			name: "Resubmission replaces the old file",
			prepareMock: func(m mocks) {
				rejected := &domain.Transaction{ID: 30, UserID: 1, Status: domain.TransactionRejected, Proof: "proofs/old.png", RejectionReason: "blurry"}
				m.repo.EXPECT().FindByID(gomock.Any(), 30).Return(rejected, nil)
				m.storage.EXPECT().Save(gomock.Any(), "proofs", file.Data, ".png").Return("proofs/a.png", nil)
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(rejected, nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
				m.storage.EXPECT().Remove(gomock.Any(), "proofs/old.png").Return(nil)
			},
		},
		{
			name: "Someone else's transaction",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().FindByID(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, UserID: 2}, nil)
			},
			expectedError: ErrTransactionNotFound,
		},
		{
			name: "Completed transaction",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().FindByID(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, UserID: 1, Status: domain.TransactionCompleted}, nil)
			},
			expectedError: ErrProofAlreadyVerified,
		},
		{
			name: "Failed update removes the new file",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().FindByID(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, UserID: 1, Status: domain.TransactionPending}, nil)
				m.storage.EXPECT().Save(gomock.Any(), "proofs", file.Data, ".png").Return("proofs/a.png", nil)
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, UserID: 1, Status: domain.TransactionPending}, nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
				m.storage.EXPECT().Remove(gomock.Any(), "proofs/a.png").Return(nil)
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			tr, err := service.AttachProof(context.Background(), 1, 30, file)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.TransactionPendingVerification, tr.Status)
			assert.Equal(t, "proofs/a.png", tr.Proof)
			assert.Empty(t, tr.RejectionReason)
		})
	}
}

func TestApprove(t *testing.T) {
	verifying := func(code string) *domain.Transaction {
		return &domain.Transaction{
			ID:           30,
			UserID:       1,
			PackageID:    2,
			Amount:       domain.Rupees(1500),
			Status:       domain.TransactionPendingVerification,
			ReferralCode: code,
		}
	}

	tests := []struct {
		name          string
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name: "Enrolls and credits the referrer",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(verifying(referralCode), nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
				m.catalog.EXPECT().Enroll(gomock.Any(), &domain.Enrollment{UserID: 1, PackageID: 2, TransactionID: 30}).Return(nil)
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(&domain.User{ID: 9}, nil)
				m.ledger.EXPECT().Move(gomock.Any(), domain.CommissionCredit(9, domain.Rupees(150), 30)).Return(nil)
			},
		},
		{
			name: "No referral",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(verifying(""), nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
				m.catalog.EXPECT().Enroll(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "Commission already credited",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(verifying(referralCode), nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
				m.catalog.EXPECT().Enroll(gomock.Any(), gomock.Any()).Return(nil)
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(&domain.User{ID: 9}, nil)
				m.ledger.EXPECT().Move(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateMovement)
			},
		},
		{
			name: "Proof missing",
			prepareMock: func(m mocks) {
				tr := verifying("")
				tr.Status = domain.TransactionPending
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(tr, nil)
			},
			expectedError: domain.ErrProofRequired,
		},
		{
			name: "Approved twice",
			prepareMock: func(m mocks) {
				tr := verifying(referralCode)
				tr.Status = domain.TransactionCompleted
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(tr, nil)
			},
			expectedError: domain.ErrTransactionFinalized,
		},
		{
			name: "Not found",
			prepareMock: func(m mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(nil, nil)
			},
			expectedError: ErrTransactionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			tr, err := service.Approve(context.Background(), 30)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.TransactionCompleted, tr.Status)
		})
	}
}

func TestReject(t *testing.T) {
	t.Run("Reason is required before any lookup", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Reject(context.Background(), 30, " ")
		assert.ErrorIs(t, err, domain.ErrReasonRequired)
	})

	t.Run("Records the reason", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().GetForUpdate(gomock.Any(), 30).Return(&domain.Transaction{ID: 30, Status: domain.TransactionPendingVerification}, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		tr, err := service.Reject(context.Background(), 30, "amount mismatch")
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionRejected, tr.Status)
		assert.Equal(t, "amount mismatch", tr.RejectionReason)
	})
}

func TestValidateReferral(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name: "Known active user",
			code: referralCode,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(&domain.User{ID: 9, FullName: "Sita", Status: domain.UserActive}, nil)
			},
		},
		{
			name:          "Bad check digit",
			code:          "1234567891",
			prepareMock:   func(m mocks) {},
			expectedError: ErrInvalidReferral,
		},
		{
			name: "Unknown code",
			code: referralCode,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(nil, nil)
			},
			expectedError: ErrInvalidReferral,
		},
		{
			name: "Suspended referrer",
			code: referralCode,
			prepareMock: func(m mocks) {
				m.users.EXPECT().FindByReferralCode(gomock.Any(), referralCode).Return(&domain.User{ID: 9, Status: domain.UserSuspended}, nil)
			},
			expectedError: ErrInvalidReferral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			user, err := service.ValidateReferral(context.Background(), tt.code)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Sita", user.FullName)
		})
	}
}
