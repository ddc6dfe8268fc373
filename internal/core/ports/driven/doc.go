// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Portal: Fetches archive listings and documents from the records portal
//   - Extractor: Turns fetched bytes into a structured Document
//   - Chunker: Splits a Document into retrieval-sized chunks
//   - VectorIndex: Persists chunks, answers nearest-neighbour queries
//   - EmbeddingService: Generates vector embeddings for the index
//   - GenerationService: Produces answers from context + conversation
//   - ArtifactStore: Pretty-printed JSON pipeline artifacts on disk
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - features degrade gracefully:
//
//   - CatalogStore: Local meeting/document catalog. Without it the
//     meetings browser and chat history are disabled.
//   - ChatStore: Conversation persistence.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
