package extract

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTS = `import { Injectable } from "@nestjs/common";
import * as path from "path";

export class UserService {
  find(id: string) {
    return app.registry.services.UserService.find(id);
  }
}

export function helper() {
  return 1;
}
`

func TestTypeScriptStrategy_ExtractsClassAndImports(t *testing.T) {
	t.Parallel()

	blocks, meta, err := NewTypeScriptStrategy().Extract("user.ts", []byte(sampleTS))
	require.NoError(t, err)

	var class, find *types.Block
	for i := range blocks {
		switch blocks[i].Name {
		case "UserService":
			class = &blocks[i]
		case "find":
			find = &blocks[i]
		}
	}
	require.NotNil(t, class)
	assert.Equal(t, types.BlockClass, class.Type)
	require.NotNil(t, find)
	assert.Equal(t, types.BlockMethod, find.Type)

	var sawNestjs bool
	for _, imp := range meta.Imports {
		if imp.Source == "@nestjs/common" {
			sawNestjs = true
			_, ok := imp.Symbols["Injectable"]
			assert.True(t, ok)
		}
	}
	assert.True(t, sawNestjs)
}

func TestTypeScriptStrategy_RecordsRuntimeRegistryImport(t *testing.T) {
	t.Parallel()

	_, meta, err := NewTypeScriptStrategy().Extract("user.ts", []byte(sampleTS))
	require.NoError(t, err)

	var found *types.ImportEdge
	for i := range meta.Imports {
		if meta.Imports[i].Runtime {
			found = &meta.Imports[i]
		}
	}
	require.NotNil(t, found, "expected a runtime registry import edge")
	assert.Equal(t, "registry.services.UserService", found.Source)
	_, ok := found.Symbols["find"]
	assert.True(t, ok)
}
