// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os/exec"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/escalint/escalint/internal/escalate"
	"github.com/escalint/escalint/internal/observability"
	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/policy/hcl"
	"github.com/escalint/escalint/internal/server"
	"github.com/escalint/escalint/internal/solver"
)

var _ = Describe("Escalation checking", func() {
	BeforeEach(func() {
		if _, err := exec.LookPath(solver.DefaultCommand); err != nil {
			Skip(solver.DefaultCommand + " not on PATH")
		}
	})

	check := func(current, proposed policy.Policy) escalate.Result {
		GinkgoHelper()
		checker := escalate.NewChecker()
		res, err := checker.Check(context.Background(), current, proposed)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("from parsed policy source", func() {
		It("finds the witness exposed by removing a deny stanza", func() {
			current, err := hcl.Parse(`
path "secret/app/cookiebot/*" {
  capabilities = ["read"]
}

path "secret/app/cookiebot/admin" {
  capabilities = ["deny"]
}
`)
			Expect(err).NotTo(HaveOccurred())

			proposed, err := hcl.Parse(`
path "secret/app/cookiebot/*" {
  capabilities = ["read"]
}
`)
			Expect(err).NotTo(HaveOccurred())

			res := check(current, proposed)
			Expect(res.Escalation).To(BeTrue())
			Expect(res.Witness.Path).To(Equal("secret/app/cookiebot/admin"))
			Expect(res.Witness.Capability).To(Equal("read"))
		})

		It("proves a narrowing change safe", func() {
			current, err := hcl.Parse(`
path "secret/app/*" {
  capabilities = ["read", "write"]
}
`)
			Expect(err).NotTo(HaveOccurred())

			proposed, err := hcl.Parse(`
path "secret/app/db" {
  capabilities = ["read"]
}
`)
			Expect(err).NotTo(HaveOccurred())

			res := check(current, proposed)
			Expect(res.Escalation).To(BeFalse())
			Expect(res.Witness).To(BeNil())
		})
	})

	Describe("over the HTTP boundary", func() {
		var (
			srv *server.Server
			obs *observability.Server
		)

		BeforeEach(func() {
			obs = observability.NewServer("127.0.0.1:0", nil)
			srv = server.NewServer("127.0.0.1:0", escalate.NewChecker(), obs.Metrics(), nil)
			Expect(srv.Start()).To(Succeed())
		})

		AfterEach(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			Expect(srv.Stop(ctx)).To(Succeed())
		})

		It("round-trips a segment-wildcard widening", func() {
			body := `{
				"current": {"secret/app/+": ["read"]},
				"new":     {"secret/app/*": ["read"]}
			}`
			resp, err := http.Post("http://"+srv.Addr()+"/v1/check", "application/json",
				bytes.NewReader([]byte(body)))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var decoded struct {
				Escalation bool              `json:"escalation"`
				Witness    *escalate.Witness `json:"witness"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&decoded)).To(Succeed())
			Expect(decoded.Escalation).To(BeTrue())
			Expect(decoded.Witness).NotTo(BeNil())
			Expect(decoded.Witness.Capability).To(Equal("read"))
		})
	})

	Describe("observational equivalence", func() {
		It("treats two no-escalation verdicts as equivalence on sampled paths", func() {
			a := policy.Policy{"secret/app/*": {"read"}}
			b := policy.Policy{"secret/app/*": {"read"}, "secret/app/x": {"read"}}

			Expect(check(a, b).Escalation).To(BeFalse())
			Expect(check(b, a).Escalation).To(BeFalse())

			evalA, err := policy.NewEvaluator(a)
			Expect(err).NotTo(HaveOccurred())
			evalB, err := policy.NewEvaluator(b)
			Expect(err).NotTo(HaveOccurred())

			for _, path := range []string{"secret/app/x", "secret/app/y/z", "secret/other", "secret/app/"} {
				for _, cap := range []policy.Capability{"read", "write"} {
					Expect(evalA.Allows(path, cap)).To(Equal(evalB.Allows(path, cap)),
						"path %q cap %q", path, cap)
				}
			}
		})
	})
})
