// Package core provides the tabular engine behind chunking and combining files.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the HTTP handlers in internal/web and by the tabkit
// command without modification.
//
// # Architecture
//
// Every operation moves data through the same canonical [Table]:
//
//   - Decode: raw bytes (delimited text or xlsx) to a Table. See [Decode],
//     [ListSheets] and [ReadHeader].
//   - Transform: [PartitionTable] splits rows into chunks; [Combine] merges
//     2 to 5 tables by union, or 2 tables by left or right join.
//   - Encode: a Table to csv, semicolon, tab or xlsx bytes. See [Encode].
//   - Archive: chunk payloads bundled by an [Archiver], normally
//     [NewZipArchive].
//
// [Service] ties the stages together for one job, holding a [JobLimiter]
// slot for its duration.
//
// # Decoding
//
// Delimited input passes through [CleanText] (BOM removal and UTF-8
// cleanup) before it is split into lines. Short rows are padded to the
// header width, over-long rows truncated and counted in [DecodeStats], and
// blank rows dropped. A source without a header or without data rows fails
// with [ErrEmptySource].
//
// Values containing the delimiter followed by a space are rejoined, but no
// other quoting is understood, and [Encode] does not escape. A cell holding
// the delimiter therefore does not survive an encode/decode round trip.
//
// # Combining
//
// Sources for a combine are decoded concurrently by [DecodeAll]; the merge
// starts only after every decode has finished, and runs once.
//
//	spec := core.JoinSpec{
//	    Mode:     core.ModeLeftJoin,
//	    Sources:  []*core.Table{orders, stores},
//	    LeftKey:  0,
//	    RightKey: 0,
//	}
//	out, err := core.Combine(spec)
//
// A right join fills the left key column of unmatched rows with the right
// row's key; a left join leaves the right side empty.
//
// # Header Contracts
//
// A [Contract] is a named expected header. Builtin contracts are registered
// at init by the core/contracts package; more can be loaded from YAML with
// [ContractRegistry.LoadFile]. Validation is a separate [HeaderPredicate]
// and never part of decoding.
//
// # Error Handling
//
// Errors are [*Error] values classified by [ErrorKind] and wrapping a
// sentinel such as [ErrInvalidChunkSize]. [MapError] turns them into a
// [UserMessage] with a code for support reference:
//
//   - CFG001-CFG009: Input errors, reported before any work
//   - DEC001-DEC005: Decode errors, abort the whole job
//   - ENC001-ENC002, ARC001: Output errors
//   - JOB001-JOB003: Job errors (busy, cancelled, timed out)
package core
