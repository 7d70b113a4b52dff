package validation

import (
	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/modulemd"
)

// StreamFromModuleStream summarizes the identifying fields of a module stream.
func StreamFromModuleStream(s modulemd.ModuleStream) *api.Stream {
	var out api.Stream
	var profiles map[string]*modulemd.Profile
	switch v := s.(type) {
	case *modulemd.ModuleStreamV1:
		out = api.Stream{Name: v.ModuleName, Stream: v.StreamName, Version: v.Version, Context: v.Context, Arch: v.Arch, Summary: v.Summary, Description: v.Description}
		profiles = v.Profiles
	case *modulemd.ModuleStreamV2:
		out = api.Stream{Name: v.ModuleName, Stream: v.StreamName, Version: v.Version, Context: v.Context, Arch: v.Arch, Summary: v.Summary, Description: v.Description}
		profiles = v.Profiles
	case *modulemd.ModuleStreamV3:
		out = api.Stream{Name: v.ModuleName, Stream: v.StreamName, Version: v.Version, Context: v.Context, Arch: v.Arch, Summary: v.Summary, Description: v.Description}
		profiles = v.Profiles
	default:
		return nil
	}
	out.NSVCA = s.NSVCA()
	if len(profiles) > 0 {
		out.Profiles = make(map[string][]string, len(profiles))
		for name, profile := range profiles {
			out.Profiles[name] = profile.Rpms.Values()
		}
	}
	return &out
}
