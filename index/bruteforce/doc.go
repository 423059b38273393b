// Package bruteforce provides an exhaustive Euclidean index. It is the exact
// baseline that approximate indexes are measured against.
package bruteforce
