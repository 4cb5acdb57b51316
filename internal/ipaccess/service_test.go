package ipaccess_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/commercemobile/storefront-admin/internal/ipaccess"
)

func TestIPAccess(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IPAccess Suite")
}

var _ = Describe("IPAccessService", func() {
	var svc *ipaccess.Service

	ctx := context.Background()

	enable := func(mode ipaccess.Mode) {
		enabled := true
		_, err := svc.Update(ctx, ipaccess.UpdateSettingsDTO{Enabled: &enabled, Mode: &mode})
		Expect(err).NotTo(HaveOccurred())
	}

	addRule := func(value string) {
		_, err := svc.AddRule(ctx, ipaccess.RuleDTO{Value: value})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		svc = ipaccess.NewService(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("defaults", func() {
		It("starts disabled in denylist mode with no rules", func() {
			settings := svc.Get(ctx)
			Expect(settings.Enabled).To(BeFalse())
			Expect(settings.Mode).To(Equal(ipaccess.ModeDenylist))
			Expect(settings.Rules).To(BeEmpty())
		})

		It("admits everyone while disabled, rules or not", func() {
			addRule("10.0.0.1")
			Expect(svc.IsAllowed("10.0.0.1")).To(BeTrue())
		})
	})

	Describe("denylist mode", func() {
		BeforeEach(func() {
			addRule("10.0.0.1")
			addRule("192.168.0.0/16")
			enable(ipaccess.ModeDenylist)
		})

		It("blocks listed addresses and admits the rest", func() {
			Expect(svc.IsAllowed("10.0.0.1")).To(BeFalse())
			Expect(svc.IsAllowed("10.0.0.2")).To(BeTrue())
		})

		It("matches CIDR ranges", func() {
			Expect(svc.IsAllowed("192.168.4.27")).To(BeFalse())
			Expect(svc.IsAllowed("192.169.0.1")).To(BeTrue())
		})

		It("strips a port before matching", func() {
			Expect(svc.IsAllowed("10.0.0.1:54321")).To(BeFalse())
		})

		It("admits an unparsable address rather than locking everyone out", func() {
			Expect(svc.IsAllowed("not-an-ip")).To(BeTrue())
		})
	})

	Describe("allowlist mode", func() {
		BeforeEach(func() {
			addRule("10.0.0.0/8")
			enable(ipaccess.ModeAllowlist)
		})

		It("admits only listed addresses", func() {
			Expect(svc.IsAllowed("10.20.30.40")).To(BeTrue())
			Expect(svc.IsAllowed("172.16.0.1")).To(BeFalse())
		})
	})

	Describe("rule management", func() {
		It("ignores a duplicate rule", func() {
			addRule("10.0.0.1")
			addRule("10.0.0.1")
			Expect(svc.Get(ctx).Rules).To(HaveLen(1))
		})

		It("removes a rule by value", func() {
			addRule("10.0.0.1")
			settings, err := svc.RemoveRule(ctx, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.Rules).To(BeEmpty())
		})

		It("errors when removing an unknown rule", func() {
			_, err := svc.RemoveRule(ctx, "10.0.0.99")
			Expect(err).To(HaveOccurred())
		})

		It("rejects IPv6 and malformed values", func() {
			_, err := svc.AddRule(ctx, ipaccess.RuleDTO{Value: "::1"})
			Expect(err).To(HaveOccurred())

			_, err = svc.AddRule(ctx, ipaccess.RuleDTO{Value: "300.1.1.1"})
			Expect(err).To(HaveOccurred())

			_, err = svc.AddRule(ctx, ipaccess.RuleDTO{Value: "10.0.0.0/33"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update validation", func() {
		It("rejects an unknown mode", func() {
			bad := ipaccess.Mode("graylist")
			_, err := svc.Update(ctx, ipaccess.UpdateSettingsDTO{Mode: &bad})
			Expect(err).To(HaveOccurred())
		})
	})
})
