// Command musgen regenerates core/records_mus.gen.go, the mus-go serializers for the
// records written to the snapshot cache. Run it with go generate ./core.
package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	"github.com/poiesic/launchpad/core"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// go generate runs us from core
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/launchpad/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.Cause]())

	err = g.AddStruct(reflect.TypeFor[core.Action](),
		structops.WithField(),
		structops.WithField())
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.Entry](),
		structops.WithField(), // ID
		structops.WithField(), // Title
		structops.WithField(), // Subtitle
		structops.WithField(), // Keywords
		structops.WithField(), // Category
		structops.WithField(), // Tags
		structops.WithField(), // Alias
		structops.WithField(), // Icon
		structops.WithField(), // Action
		structops.WithField(), // Priority
		structops.WithField()) // Enabled
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.DiagnosticRecord](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField())
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	err = os.WriteFile("./core/records_mus.gen.go", bs, 0644)
	if err != nil {
		panic(err)
	}
}
