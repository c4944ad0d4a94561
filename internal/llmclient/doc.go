// Package llmclient holds the small chat/vision provider wrappers shared by
// the Metadata Generator and the Image Extractor. It intentionally exposes
// two functions rather than a provider abstraction: both call sites are
// single-turn, single-purpose prompts (produce a header JSON object, or
// caption one image), so a richer multi-turn Provider/Message abstraction
// would be over-engineering here.
package llmclient
