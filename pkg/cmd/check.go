// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shackle-lang/go-shackle/pkg/check"
	"github.com/shackle-lang/go-shackle/pkg/diag"
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/schedule"
	"github.com/shackle-lang/go-shackle/pkg/thir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// noStdlib resolves no well-known identifiers at all: a fixture file has no
// notion of an imported standard library, so the lowering pass's raw-callee
// fallback (pkg/thir/lower.go) is exercised for every range-operator/equality
// call a fixture writes instead of resolving through a stdlib item.
type noStdlib struct{}

func (noStdlib) Lookup(hir.WellKnown) (hir.ItemRef, bool) { return hir.ItemRef{}, false }

var checkCmd = &cobra.Command{
	Use:   "check <fixture.json>",
	Short: "Type-check a JSON-encoded HIR fixture and report diagnostics.",
	Long: `Type-check a JSON-encoded HIR fixture and report diagnostics.

The fixture is a hand-authored stand-in for what a real CST-to-HIR lowering
pass would produce (see pkg/cmd/fixture.go); this command is a smoke-testing
entry point for the signature typer, body typer and HIR-to-THIR lowering
pass, not a compiler front end.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		emitThir := GetFlag(cmd, "emit-thir")

		fx, err := LoadFixture(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		diags := diag.NewBag()
		checker := check.NewChecker(fx.Table, fx.NewTypes, fx.Strings, fx.Model, fx.Scopes, diags)

		sched := schedule.New(len(fx.Model.Items), fx.Deps)
		order, cycles := sched.Run()

		checker.ComputeAll(order, cycles)

		for _, item := range order {
			checker.Body(item)
		}

		if emitThir {
			model := thir.Lower(checker, fx.Scopes, noStdlib{}, fx.Strings, fx.Model, order)

			out, err := json.MarshalIndent(model, "", "  ")
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			fmt.Println(string(out))
		}

		if diags.Empty() {
			fmt.Println("no diagnostics")
			return
		}

		if err := diag.Render(os.Stdout, diags); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("emit-thir", false, "also print the lowered THIR model as JSON")
}
