package invitation_test

import (
	"errors"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeEmail", func() {
	DescribeTable("accepted addresses",
		func(raw, want string) {
			got, err := invitation.NormalizeEmail(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("plain", "ana@agency.test", "ana@agency.test"),
		Entry("mixed case and spaces", "  Ana@Agency.Test ", "ana@agency.test"),
		Entry("plus tag", "ana+ventas@agency.test", "ana+ventas@agency.test"),
	)

	DescribeTable("rejected addresses",
		func(raw string) {
			_, err := invitation.NormalizeEmail(raw)
			Expect(errors.Is(err, internal.ErrInvalidEmail)).To(BeTrue())
		},
		Entry("empty", "   "),
		Entry("no domain", "ana@"),
		Entry("no at sign", "ana.agency.test"),
		Entry("display name", "Ana <ana@agency.test>"),
	)
})

var _ = Describe("NewToken", func() {
	It("should return 64 hex characters", func() {
		token, err := invitation.NewToken()
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(MatchRegexp(`^[0-9a-f]{64}$`))
	})
})
