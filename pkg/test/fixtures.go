package test

import (
	"embed"
)

//go:embed fixtures/*.yaml
var f embed.FS

// Fixture returns the named file under fixtures/.
func Fixture(name string) string {
	data, err := f.ReadFile("fixtures/" + name)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func ModuleStreamV1() string {
	return Fixture("v1.yaml")
}

// ModuleStreamV2 is a complete, valid modulemd version 2 document.
func ModuleStreamV2() string {
	return Fixture("v2.yaml")
}

func ModuleStreamV3() string {
	return Fixture("v3.yaml")
}

func PackagerV3() string {
	return Fixture("packager_v3.yaml")
}

func Obsoletes() string {
	return Fixture("obsoletes.yaml")
}

func Defaults() string {
	return Fixture("defaults.yaml")
}

// Translations translates the stream of ModuleStreamV2 into two locales.
func Translations() string {
	return Fixture("translations.yaml")
}

// PackagerV2 is a modulemd-packager version 2 document with only the keys a
// packager may set.
func PackagerV2() string {
	return Fixture("packager_v2.yaml")
}

// Mixed holds two valid documents and three that fail to read.
func Mixed() string {
	return Fixture("mixed.yaml")
}
