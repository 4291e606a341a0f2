// Package storage is the object store for datasets and rendered attachments.
//
// S3Storage works with AWS S3 and S3-compatible services (MinIO, R2) through
// aws-sdk-go-v2. Memory is an in-process Storage for tests.
//
//	store, err := storage.New(storage.Config{
//	    Bucket:    "mailmerge",
//	    AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//	    SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//	})
//	err = store.Put(ctx, "sources/customers.csv", bytes.NewReader(data), int64(len(data)), "text/csv")
//
// Errors are normalized to the package sentinels; match them with errors.Is.
package storage
