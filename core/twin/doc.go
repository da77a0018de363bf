// Package twin provides the digital twin registry client.
//
// Shells are identified by their full set of specific asset ids; LookupShells
// only returns shells matching every given name/value pair. Ids in URL paths
// are base64url encoded as the registry API expects.
package twin
