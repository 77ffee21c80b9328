// Package gen turns a parsed DBML schema into generated source files.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	schema.dbml
//	        ↓
//	   dbml.Parse (compiler/load)
//	        ↓
//	   Graph: one Type per table, with analyzed Relations
//	        ↓
//	   Emitter (compiler/gen/golang)
//	        ↓
//	   database/migrations, app/models, app/services, app/controllers
//
// # Key Types
//
//   - Graph: Holds all Type definitions and the analyzed relations
//   - Type: One table with its model name and belongsTo/hasMany lists
//   - Relations: The result of AnalyzeRelationships
//   - Artifact: One generated file with its declared shape
//   - Emitter: Renders the four artifacts of a Type
//   - Generator: Writes the artifacts and prints the transcript
//   - Config: Global configuration for code generation
//
// # Relationship names
//
// A many_to_one edge from posts.user_id to users.id gives posts a belongsTo
// relation named after the singular target table ("user") and gives users a
// hasMany relation named after the source table ("posts"). Self references
// name the hasMany side "children". A name already used on the same table is
// suffixed with the foreign key: "user_by_author_id".
//
// # Migration versions
//
// Every migration written by one Generate call shares the timestamp taken at
// the start of the run and carries a 4-digit sequence number, so files sort
// in table declaration order:
//
//	2026_10_19_120000_000000000_0001_CreateUsersTable.go
//	2026_10_19_120000_000000000_0002_CreatePostsTable.go
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: Tables that cannot become a type
//   - ConfigError: Configuration errors
//   - EdgeError: Relationships whose ends do not resolve (strict mode)
//   - GenerationError: File write failures
//
// Example error handling:
//
//	if err := gen.NewGenerator(g, e).Generate(ctx); err != nil {
//	    if errors.Is(err, gen.ErrGenerationFailed) {
//	        // files written before the failure remain on disk
//	    }
//	}
package gen
