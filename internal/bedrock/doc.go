// Package bedrock implements the Bedrock edition pipeline.
//
// A run resolves a version from the community catalog, selects its x64
// build, and acquires the package. UWP packages are plain zip containers
// (.appx) whose language files are extracted directly, including those
// inside nested resource-pack zips. GDK packages (.msixvc) are encrypted;
// they are handed to an external unpack command and the language files are
// read from the unpacked tree.
package bedrock
