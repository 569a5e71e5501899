package manifest

// PathProvider answers where the Oculus libraries and the central client
// installation live. Registry/WMI discovery happens outside this module; all
// we need back are paths.
type PathProvider interface {
	// LibraryPaths returns every configured library root, in priority order.
	LibraryPaths() []string
	// InstallPath returns the central client installation directory, or ""
	// when it cannot be determined.
	InstallPath() string
}

// StaticPaths is a PathProvider over fixed values (typically from the
// environment config).
type StaticPaths struct {
	Libraries []string
	Install   string
}

func (p StaticPaths) LibraryPaths() []string { return p.Libraries }
func (p StaticPaths) InstallPath() string    { return p.Install }
