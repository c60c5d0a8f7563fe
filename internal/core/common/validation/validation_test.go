package validation_test

import (
	"strings"
	"testing"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

func fields(err *internal.AppError) []string {
	details, ok := err.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	var out []string
	for _, e := range details.Errors {
		out = append(out, e.Field)
	}
	return out
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every rule holds", func() {
		v := validation.NewValidator()
		v.Field("reg_no", "R-100").Required().MaxLength(32)
		v.Field("email", "nurse@hospital.org").Required().Email()
		Expect(v.Validate()).To(BeNil())
	})

	It("collects one error per failing field", func() {
		v := validation.NewValidator()
		v.Field("reg_no", "").Required().MaxLength(3)
		v.Field("username", "").Required()
		v.Field("email", "bad").Required().Email()

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))
		Expect(err.StatusCode).To(Equal(400))
		Expect(fields(err)).To(Equal([]string{"reg_no", "username", "email"}))
	})

	It("rejects addresses with display names", func() {
		err := validation.ValidateEmail("Ann <ann@hospital.org>")
		Expect(err).NotTo(BeNil())
		details := err.Details.(internal.ValidationErrors)
		Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidEmail)))
	})

	It("enforces allowed values", func() {
		v := validation.NewValidator()
		v.Field("outcome", "MAYBE").OneOf("ACCEPT", "REJECT")
		Expect(v.Validate()).NotTo(BeNil())
	})

	It("caps password length at the bcrypt input limit", func() {
		Expect(validation.ValidatePassword("secret")).To(BeNil())
		Expect(validation.ValidatePassword(strings.Repeat("x", 73))).NotTo(BeNil())
		Expect(validation.ValidatePassword("")).NotTo(BeNil())
	})
})
