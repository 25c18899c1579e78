package shaders

import (
	_ "embed"
)

//go:embed line.wgsl
var LineWGSL string

//go:embed text.wgsl
var TextWGSL string
