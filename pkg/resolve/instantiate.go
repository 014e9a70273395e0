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
package resolve

import (
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// instantiate computes, for every type-inst variable in c.TyVars, the
// most-specific supertype of the argument types occurring at that
// variable's structural position across all of c's parameters. Returns
// false if any variable has no contributing position or its contributions
// admit no supremum.
func instantiate(tbl *types.Table, c Candidate, args []types.Ty) (map[intern.NewTypeID]types.Ty, bool) {
	if len(c.TyVars) == 0 {
		return map[intern.NewTypeID]types.Ty{}, true
	}

	collected := map[intern.NewTypeID][]types.Ty{}

	for i, p := range c.Params {
		collect(tbl, p, args[i], collected)
	}

	inst := make(map[intern.NewTypeID]types.Ty, len(c.TyVars))

	for _, desc := range c.TyVars {
		vals := collected[desc.ID]
		if len(vals) == 0 {
			return nil, false
		}

		sup, ok := tbl.MostSpecificSupertype(vals)
		if !ok {
			return nil, false
		}

		inst[desc.ID] = sup
	}

	return inst, true
}

// collect walks param in parallel with arg, recording arg's subtype at
// every structural position where param names a type-inst variable.
func collect(tbl *types.Table, param, arg types.Ty, out map[intern.NewTypeID][]types.Ty) {
	if tbl.IsTyVar(param) {
		desc := tbl.TyVarDescriptor(param)
		out[desc.ID] = append(out[desc.ID], arg)

		return
	}

	switch {
	case tbl.IsArray(param) && tbl.IsArray(arg):
		pDim, pElem := tbl.ArrayParts(param)
		aDim, aElem := tbl.ArrayParts(arg)
		collect(tbl, pDim, aDim, out)
		collect(tbl, pElem, aElem, out)
	case tbl.IsSet(param) && tbl.IsSet(arg):
		collect(tbl, tbl.SetElem(param), tbl.SetElem(arg), out)
	case tbl.IsTuple(param) && tbl.IsTuple(arg):
		pFields, aFields := tbl.TupleFields(param), tbl.TupleFields(arg)
		for i := 0; i < len(pFields) && i < len(aFields); i++ {
			collect(tbl, pFields[i], aFields[i], out)
		}
	case tbl.IsRecord(param) && tbl.IsRecord(arg):
		pFields := tbl.RecordFields(param)
		aFields := tbl.RecordFields(arg)
		aByName := make(map[intern.StringID]types.Ty, len(aFields))

		for _, f := range aFields {
			aByName[f.Name] = f.Type
		}

		for _, f := range pFields {
			if at, ok := aByName[f.Name]; ok {
				collect(tbl, f.Type, at, out)
			}
		}
	case tbl.IsFunction(param) && tbl.IsFunction(arg):
		pParams, pRet := tbl.FunctionParts(param)
		aParams, aRet := tbl.FunctionParts(arg)

		for i := 0; i < len(pParams) && i < len(aParams); i++ {
			collect(tbl, pParams[i], aParams[i], out)
		}

		collect(tbl, pRet, aRet, out)
	}
}

// substitute rebuilds ty with every type-inst-variable occurrence replaced
// by its instantiation from inst, re-applying that occurrence's own
// var/opt override (if any) on top of the shared instantiation.
func substitute(tbl *types.Table, ty types.Ty, inst map[intern.NewTypeID]types.Ty) types.Ty {
	if tbl.IsTyVar(ty) {
		desc := tbl.TyVarDescriptor(ty)

		replacement, ok := inst[desc.ID]
		if !ok {
			return ty
		}

		return applyOverrides(tbl, ty, replacement)
	}

	switch {
	case tbl.IsArray(ty):
		dim, elem := tbl.ArrayParts(ty)
		result, ok := tbl.Array(substitute(tbl, dim, inst), substitute(tbl, elem, inst), tbl.Opt(ty))

		if !ok {
			return ty
		}

		return result
	case tbl.IsSet(ty):
		elem := substitute(tbl, tbl.SetElem(ty), inst)

		result, ok := tbl.ParSet(elem, tbl.Opt(ty))
		if !ok {
			return ty
		}

		if tbl.Var(ty) == types.Var {
			if varResult, ok := tbl.WithInst(result, types.Var); ok {
				return varResult
			}
		}

		return result
	case tbl.IsTuple(ty):
		fields := tbl.TupleFields(ty)
		out := make([]types.Ty, len(fields))

		for i, f := range fields {
			out[i] = substitute(tbl, f, inst)
		}

		return tbl.Tuple(out, tbl.Opt(ty))
	case tbl.IsRecord(ty):
		fields := tbl.RecordFields(ty)
		out := make([]types.RecordField, len(fields))

		for i, f := range fields {
			out[i] = types.RecordField{Name: f.Name, Type: substitute(tbl, f.Type, inst)}
		}

		result, ok := tbl.Record(out, tbl.Opt(ty))
		if !ok {
			return ty
		}

		return result
	case tbl.IsFunction(ty):
		params, ret := tbl.FunctionParts(ty)
		out := make([]types.Ty, len(params))

		for i, p := range params {
			out[i] = substitute(tbl, p, inst)
		}

		return tbl.Function(out, substitute(tbl, ret, inst), tbl.Opt(ty))
	default:
		return ty
	}
}

// applyOverrides re-applies the var/opt override recorded on a type-inst
// variable occurrence (e.g. the "var" in "var $T") on top of its shared
// instantiation.
func applyOverrides(tbl *types.Table, occurrence, instantiation types.Ty) types.Ty {
	result := instantiation

	varSet, varVal, optSet, optVal := tbl.TyVarOverride(occurrence)

	if varSet {
		if withVar, ok := tbl.WithInst(result, varVal); ok {
			result = withVar
		}
	}

	if optSet {
		result = tbl.WithOpt(result, optVal)
	}

	return result
}
