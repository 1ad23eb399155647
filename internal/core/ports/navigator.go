package ports

// Navigator is the routing collaborator: it knows where the user currently
// is and can move them. The reconciler drives it but does not own it.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}
