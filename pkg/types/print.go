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
package types

import (
	"strings"

	"github.com/shackle-lang/go-shackle/pkg/intern"
)

// Printer renders Ty values to their canonical human-readable form, using
// the printed names recorded in the NewTypes/Strings tables for enums,
// type-inst variables and record field names.
type Printer struct {
	Types    *Table
	NewTypes *intern.NewTypes
	Strings  *intern.Strings
}

// Print is a pure function from Ty to its canonical string form.
func (p *Printer) Print(ty Ty) string {
	var b strings.Builder
	p.print(&b, ty, 0)

	return b.String()
}

func (p *Printer) print(b *strings.Builder, ty Ty, depth int) {
	if depth > maxStructuralDepth {
		b.WriteString("...")
		return
	}

	d := p.Types.get(ty)

	switch d.kind {
	case kindBoolean:
		p.scalar(b, "bool", d.vr, d.opt)
	case kindInteger:
		p.scalar(b, "int", d.vr, d.opt)
	case kindFloat:
		p.scalar(b, "float", d.vr, d.opt)
	case kindEnum:
		p.scalar(b, p.NewTypes.Name(d.enum), d.vr, d.opt)
	case kindString:
		p.opt(b, d.opt)
		b.WriteString("string")
	case kindAnnotation:
		p.opt(b, d.opt)
		b.WriteString("ann")
	case kindBottom:
		p.opt(b, d.opt)
		b.WriteString("bottom")
	case kindError:
		b.WriteString("error")
	case kindArray:
		p.opt(b, d.opt)
		b.WriteString("array[")
		// Array dimensions render without the outer tuple(...) when the
		// dim itself is a tuple (spec 4.2 pretty-printing rule).
		dimData := p.Types.get(d.dim)
		if dimData.kind == kindTuple {
			for i, f := range dimData.elems {
				if i > 0 {
					b.WriteString(", ")
				}

				p.print(b, f, depth+1)
			}
		} else {
			p.print(b, d.dim, depth+1)
		}

		b.WriteString("] of ")
		p.print(b, d.elem, depth+1)
	case kindSet:
		if d.vr == Var {
			b.WriteString("var ")
		}

		p.opt(b, d.opt)
		b.WriteString("set of ")
		p.print(b, d.elem, depth+1)
	case kindTuple:
		p.opt(b, d.opt)
		b.WriteString("tuple(")

		for i, f := range d.elems {
			if i > 0 {
				b.WriteString(", ")
			}

			p.print(b, f, depth+1)
		}

		b.WriteString(")")
	case kindRecord:
		p.opt(b, d.opt)
		b.WriteString("record(")

		for i, f := range d.elems {
			if i > 0 {
				b.WriteString(", ")
			}

			p.print(b, f, depth+1)
			b.WriteString(": ")
			b.WriteString(p.Strings.Lookup(d.names[i]))
		}

		b.WriteString(")")
	case kindFunction:
		p.opt(b, d.opt)
		b.WriteString("function ")
		p.print(b, d.ret, depth+1)
		b.WriteString(": (")

		for i, f := range d.elems {
			if i > 0 {
				b.WriteString(", ")
			}

			p.print(b, f, depth+1)
		}

		b.WriteString(")")
	case kindTyVar:
		p.printTyVar(b, d)
	}
}

func (p *Printer) scalar(b *strings.Builder, name string, vr VarType, opt OptType) {
	if vr == Var {
		b.WriteString("var ")
	}

	p.opt(b, opt)
	b.WriteString(name)
}

func (p *Printer) opt(b *strings.Builder, opt OptType) {
	if opt == Opt {
		b.WriteString("opt ")
	}
}

func (p *Printer) printTyVar(b *strings.Builder, d tyData) {
	if d.tvVar.set && d.tvVar.value == Var {
		b.WriteString("var ")
	}

	if d.tvOpt.set && d.tvOpt.value == Opt {
		b.WriteString("opt ")
	}

	b.WriteString("$")
	b.WriteString(p.NewTypes.Name(d.tvDesc.ID))
}
