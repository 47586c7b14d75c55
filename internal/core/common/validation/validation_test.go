package validation_test

import (
	"testing"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

func details(err error) []internal.ValidationError {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue())
	Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
	return appErr.Details.(internal.ValidationErrors).Errors
}

var _ = Describe("ValidationBuilder", func() {
	It("should pass valid input", func() {
		v := validation.NewValidator()
		v.Field("name", "Luis").Required(internal.ErrCodeValidationFailed).MaxLength(10)
		Expect(v.Validate()).To(BeNil())
	})

	It("should report every failing field", func() {
		v := validation.NewValidator()
		v.Field("email", "  ").Required(internal.ErrCodeInvalidEmail)
		v.Field("password", "short").MinLength(8)

		errs := details(v.Validate())
		Expect(errs).To(HaveLen(2))
		Expect(errs[0].Field).To(Equal("email"))
		Expect(errs[0].Code).To(Equal(string(internal.ErrCodeInvalidEmail)))
		Expect(errs[1].Message).To(Equal("password must be at least 8 characters"))
	})

	It("should stop at the first failing rule of a field", func() {
		v := validation.NewValidator()
		v.Field("capability", "").Required(internal.ErrCodeInvalidPermissions).NoWhitespace(internal.ErrCodeInvalidPermissions)

		Expect(details(v.Validate())).To(HaveLen(1))
	})

	It("should count characters rather than bytes", func() {
		v := validation.NewValidator()
		v.Field("name", "José").MaxLength(4)
		Expect(v.Validate()).To(BeNil())
	})

	It("should reject whitespace inside a value", func() {
		v := validation.NewValidator()
		v.Field("capability", "gestion usuarios").NoWhitespace(internal.ErrCodeInvalidPermissions)

		errs := details(v.Validate())
		Expect(errs[0].Code).To(Equal(string(internal.ErrCodeInvalidPermissions)))
	})
})
