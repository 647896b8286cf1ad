// Package language normalizes locale codes and implements the locale
// allowlist used while extracting language files.
//
// Locale codes appear in file names (en_US.lang, zh_CN-pocket.lang) and in
// operator configuration (en-US). Both sides go through Normalize so that
// case and the underscore/hyphen separator never affect matching.
package language
