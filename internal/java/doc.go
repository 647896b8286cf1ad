// Package java implements the Java edition pipeline.
//
// The version manifest names a client manifest per version, which in turn
// points at client.jar and the asset index. The jar carries the source
// language (en_us.json on current versions, en_US.lang or lang/*.lang on
// older ones). When the jar holds a single language, the remaining locales
// are fetched from the asset store, but only when the asset index differs
// from the one recorded by the previous run.
package java
