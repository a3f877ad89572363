// Package minio provides a blobstore.Store for S3-compatible endpoints via
// the MinIO client: institutional object stores, self-hosted mirrors, or
// MinIO itself.
//
// Reads delegate to minio.Object, which issues ranged requests under the
// hood; whole-file fetches use FGetObject.
package minio
