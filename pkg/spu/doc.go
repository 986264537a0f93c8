// Package spu is the high-level entry point to spukit.
//
// Open returns a Client bound to one backend: the device behind a mapped
// register window, the in-memory simulation, or a hybrid of the two where the
// simulation holds the data and the device answers neighbor queries.
//
//	c, err := spu.Open(spu.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	s, err := c.New(ctx)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	_, err = s.Insert(ctx, spu.KeyOf(7), spu.ValueOf(70), spu.DefaultInsertFlags)
package spu
