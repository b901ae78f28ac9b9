// Package layout computes where build output goes.
//
// The root project's build directory is relocated out of the Gradle tree to
// a shared base directory, and every subproject writes to a directory named
// after itself under that base:
//
//	<rootDir>/build/../../build        base (root project output)
//	<base>/<project>                   subproject output
//
// Path computation is pure. Tree is the only part that touches the disk.
package layout
