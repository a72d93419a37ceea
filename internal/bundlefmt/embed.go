// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package bundlefmt

import (
	"bytes"
	"fmt"
	"go/format"

	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

// EmbedSource renders bundle as a standalone Go source file declaring a
// package-level *whitebox.Bundle variable named varName, formatted with
// go/format the same way any other generated Go source would be.
// importPath is the import path the emitted file uses to reference the
// whitebox package's types.
func EmbedSource(bundle *whitebox.Bundle, pkg, varName, importPath string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := fmt.Fprintf(&buf, "// Code generated by the white-box bundle generator. DO NOT EDIT.\n\npackage %s\n\nimport %q\n\n", pkg, importPath); err != nil {
		return nil, fmt.Errorf("bundlefmt: write header: %w", err)
	}
	if _, err := fmt.Fprintf(&buf, "var %s = &whitebox.Bundle{\n\tUsesMixing: %v,\n\tFinalTBoxes: %s,\n\tTyi: %s,\n\tXor: %s,\n\tMixing: %s,\n\tMixingXor: %s,\n}\n",
		varName, bundle.UsesMixing,
		literalArray16TBox(bundle.FinalTBoxes),
		literalArray9x16Tyi(bundle), literalArray9x96Xor(bundle),
		literalArray9x16Mixing(bundle), literalArray9x96MixingXor(bundle)); err != nil {
		return nil, fmt.Errorf("bundlefmt: write body: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("bundlefmt: format generated source: %w", err)
	}
	return formatted, nil
}

func literalArray16TBox(tboxes [16]whitebox.TBox) string {
	var b bytes.Buffer
	b.WriteString("[16]whitebox.TBox{")
	for _, t := range tboxes {
		fmt.Fprintf(&b, "%#v,", t)
	}
	b.WriteString("}")
	return b.String()
}

func literalArray9x16Tyi(bundle *whitebox.Bundle) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%d][16]whitebox.TyiTable{", len(bundle.Tyi))
	for _, round := range bundle.Tyi {
		b.WriteString("{")
		for _, t := range round {
			fmt.Fprintf(&b, "%#v,", t)
		}
		b.WriteString("},")
	}
	b.WriteString("}")
	return b.String()
}

func literalArray9x96Xor(bundle *whitebox.Bundle) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%d][96]whitebox.XorTable{", len(bundle.Xor))
	for _, round := range bundle.Xor {
		b.WriteString("{")
		for _, t := range round {
			fmt.Fprintf(&b, "%#v,", t)
		}
		b.WriteString("},")
	}
	b.WriteString("}")
	return b.String()
}

func literalArray9x16Mixing(bundle *whitebox.Bundle) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%d][16]whitebox.MixingTable{", len(bundle.Mixing))
	for _, round := range bundle.Mixing {
		b.WriteString("{")
		for _, t := range round {
			fmt.Fprintf(&b, "%#v,", t)
		}
		b.WriteString("},")
	}
	b.WriteString("}")
	return b.String()
}

func literalArray9x96MixingXor(bundle *whitebox.Bundle) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%d][96]whitebox.XorTable{", len(bundle.MixingXor))
	for _, round := range bundle.MixingXor {
		b.WriteString("{")
		for _, t := range round {
			fmt.Fprintf(&b, "%#v,", t)
		}
		b.WriteString("},")
	}
	b.WriteString("}")
	return b.String()
}
