package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/frahmantamala/staff-registry/internal/core/common/dberr"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestDBErr(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DB Error Suite")
}

var _ = Describe("UniqueViolation", func() {
	It("reads the column from a postgres constraint name", func() {
		err := fmt.Errorf("create account: %w", &pgconn.PgError{
			Code:           "23505",
			TableName:      "accounts",
			ConstraintName: "idx_accounts_reg_no",
		})
		column, ok := dberr.UniqueViolation(err)
		Expect(ok).To(BeTrue())
		Expect(column).To(Equal("reg_no"))
	})

	It("ignores other postgres errors", func() {
		_, ok := dberr.UniqueViolation(&pgconn.PgError{Code: "23503"})
		Expect(ok).To(BeFalse())
	})

	It("parses sqlite messages", func() {
		column, ok := dberr.UniqueViolation(errors.New("UNIQUE constraint failed: registration_requests.email"))
		Expect(ok).To(BeTrue())
		Expect(column).To(Equal("email"))
	})

	It("returns false for unrelated errors", func() {
		_, ok := dberr.UniqueViolation(errors.New("connection refused"))
		Expect(ok).To(BeFalse())
		_, ok = dberr.UniqueViolation(nil)
		Expect(ok).To(BeFalse())
	})

	It("recognises record not found", func() {
		Expect(dberr.IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound))).To(BeTrue())
		Expect(dberr.IsNotFound(errors.New("boom"))).To(BeFalse())
	})
})
